package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "qrs.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Connect(context.Background()))
	return s, path
}

func sampleQR() *QR {
	return &QR{
		Data:     "https://example.com",
		QRType:   "website",
		Title:    "Homepage",
		FormData: map[string]any{"url": "https://example.com"},
		Styles: Styles{
			DotsStyle:         "dots-square",
			ForegroundColor:   "#000000",
			BackgroundColor:   "#FFFFFF",
			CornerSquareStyle: "square",
			CornerDotStyle:    "square",
		},
		FrameOptions: FrameOptions{ID: "frame-card", Color: "#000000", TextColor: "#FFFFFF", Text: "Scan Me!"},
		LogoOptions:  LogoOptions{Type: "suggested", ID: "logo-website"},
	}
}

func TestFileStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	qr := sampleQR()
	require.NoError(t, s.Create(ctx, qr))
	assert.NotEmpty(t, qr.ID)
	assert.False(t, qr.CreatedAt.IsZero())
	assert.Equal(t, qr.CreatedAt, qr.UpdatedAt)

	got, err := s.Get(ctx, qr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Homepage", got.Title)
	assert.Equal(t, "frame-card", got.FrameOptions.ID)
	assert.Equal(t, "logo-website", got.LogoOptions.ID)
}

func TestFileStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Update(ctx, &QR{ID: "missing"}), ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
}

func TestFileStore_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	qr := sampleQR()
	require.NoError(t, s.Create(ctx, qr))
	created := qr.CreatedAt

	time.Sleep(2 * time.Millisecond)
	edit := *qr
	edit.Title = "Renamed"
	edit.CreatedAt = time.Time{}
	require.NoError(t, s.Update(ctx, &edit))
	assert.Equal(t, created, edit.CreatedAt)
	assert.True(t, edit.UpdatedAt.After(created))

	got, err := s.Get(ctx, qr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestFileStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	first := sampleQR()
	require.NoError(t, s.Create(ctx, first))
	time.Sleep(2 * time.Millisecond)
	second := sampleQR()
	second.Title = "Second"
	require.NoError(t, s.Create(ctx, second))

	qrs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, qrs, 2)
	assert.Equal(t, second.ID, qrs[0].ID)
	assert.Equal(t, first.ID, qrs[1].ID)

	require.NoError(t, s.Delete(ctx, second.ID))
	qrs, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, qrs, 1)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	s, path := newFileStore(t)

	qr := sampleQR()
	require.NoError(t, s.Create(ctx, qr))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"qrType": "website"`)

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, reopened.Connect(ctx))

	got, err := reopened.Get(ctx, qr.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got.FormData["url"])
	assert.Equal(t, qr.Styles, got.Styles)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qrs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.Error(t, s.Connect(context.Background()))
}

func TestNew(t *testing.T) {
	s, err := New(Config{Type: "file", FilePath: filepath.Join(t.TempDir(), "qrs.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = New(Config{Type: "file"})
	require.Error(t, err)

	_, err = New(Config{Type: "postgres"})
	require.Error(t, err)

	pg, err := New(Config{Type: "postgres", DatabaseURL: "postgres://u:p@localhost:5432/qrs"})
	require.NoError(t, err)
	assert.IsType(t, &PostgresStore{}, pg)
	require.NoError(t, pg.Close())

	_, err = New(Config{Type: "sqlite"})
	require.ErrorContains(t, err, "unsupported storage type")
}

func TestWithSSLMode(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		enabled bool
		want    string
	}{
		{"disabled", "postgres://localhost/qrs", false, "postgres://localhost/qrs?sslmode=disable"},
		{"enabled", "postgres://localhost/qrs", true, "postgres://localhost/qrs?sslmode=require"},
		{"existing query", "postgres://localhost/qrs?connect_timeout=5", true, "postgres://localhost/qrs?connect_timeout=5&sslmode=require"},
		{"explicit mode kept", "postgres://localhost/qrs?sslmode=verify-full", false, "postgres://localhost/qrs?sslmode=verify-full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, withSSLMode(tt.url, tt.enabled))
		})
	}
}

type recordingExecutor struct {
	queries []string
}

func (r *recordingExecutor) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	r.queries = append(r.queries, query)
	return nil, nil
}

func (r *recordingExecutor) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, nil
}

func (r *recordingExecutor) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func TestRunMigrations(t *testing.T) {
	names, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_create_qrs.sql", names[0])

	exec := &recordingExecutor{}
	require.NoError(t, RunMigrations(context.Background(), exec))
	require.Len(t, exec.queries, len(names))
	assert.True(t, strings.Contains(exec.queries[0], "CREATE TABLE IF NOT EXISTS qrs"))
}
