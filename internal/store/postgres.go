package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresStore keeps QR codes in the qrs table.
type PostgresStore struct {
	db *sql.DB
}

// dbExecutor is satisfied by both *sql.DB and *sql.Tx.
type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewPostgresStore opens (but does not ping) the database in cfg.DatabaseURL.
func NewPostgresStore(cfg Config) (*PostgresStore, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required for PostgreSQL storage")
	}

	db, err := sql.Open("postgres", withSSLMode(cfg.DatabaseURL, cfg.SSLEnabled))
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	return &PostgresStore{db: db}, nil
}

// withSSLMode adds sslmode to url unless it already names one.
func withSSLMode(url string, sslEnabled bool) string {
	if strings.Contains(url, "sslmode=") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	if sslEnabled {
		return url + sep + "sslmode=require"
	}
	return url + sep + "sslmode=disable"
}

// Connect waits for the database to answer and runs the migrations.
func (s *PostgresStore) Connect(ctx context.Context) error {
	err := retry.Do(func() error {
		return s.db.PingContext(ctx)
	},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(ctx, s.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Create(ctx context.Context, qr *QR) error {
	now := time.Now().UTC()
	qr.ID = uuid.NewString()
	qr.CreatedAt = now
	qr.UpdatedAt = now
	return insertQR(ctx, s.db, qr)
}

func (s *PostgresStore) Update(ctx context.Context, qr *QR) error {
	return updateQR(ctx, s.db, qr)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*QR, error) {
	query := `SELECT ` + qrColumns + ` FROM qrs WHERE id = $1`
	qr, err := scanQR(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return qr, err
}

func (s *PostgresStore) List(ctx context.Context) ([]QR, error) {
	query := `SELECT ` + qrColumns + ` FROM qrs ORDER BY updated_at DESC, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var qrs []QR
	for rows.Next() {
		qr, err := scanQR(rows)
		if err != nil {
			return nil, err
		}
		qrs = append(qrs, *qr)
	}
	return qrs, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM qrs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

const qrColumns = `id, data, qr_type, title, form_data, styles, frame_options, logo_options, file_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQR(row rowScanner) (*QR, error) {
	var (
		qr                                    QR
		formData, styles, frameOpts, logoOpts []byte
		fileID                                sql.NullString
	)
	err := row.Scan(&qr.ID, &qr.Data, &qr.QRType, &qr.Title,
		&formData, &styles, &frameOpts, &logoOpts, &fileID,
		&qr.CreatedAt, &qr.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, col := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"form_data", formData, &qr.FormData},
		{"styles", styles, &qr.Styles},
		{"frame_options", frameOpts, &qr.FrameOptions},
		{"logo_options", logoOpts, &qr.LogoOptions},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", col.name, err)
		}
	}
	qr.FileID = fileID.String
	return &qr, nil
}

// jsonColumns marshals the JSONB columns of qr in qrColumns order.
func jsonColumns(qr *QR) ([]any, error) {
	vals := make([]any, 0, 4)
	for _, v := range []any{qr.FormData, qr.Styles, qr.FrameOptions, qr.LogoOptions} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal qr options: %w", err)
		}
		vals = append(vals, string(b))
	}
	return vals, nil
}

func insertQR(ctx context.Context, db dbExecutor, qr *QR) error {
	cols, err := jsonColumns(qr)
	if err != nil {
		return err
	}
	query := `INSERT INTO qrs (` + qrColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = db.ExecContext(ctx, query,
		qr.ID, qr.Data, qr.QRType, qr.Title,
		cols[0], cols[1], cols[2], cols[3], nullString(qr.FileID),
		qr.CreatedAt, qr.UpdatedAt)
	return err
}

func updateQR(ctx context.Context, db dbExecutor, qr *QR) error {
	cols, err := jsonColumns(qr)
	if err != nil {
		return err
	}
	query := `UPDATE qrs SET data = $2, qr_type = $3, title = $4, form_data = $5, styles = $6,
	              frame_options = $7, logo_options = $8, file_id = $9, updated_at = NOW()
	          WHERE id = $1
	          RETURNING created_at, updated_at`
	err = db.QueryRowContext(ctx, query,
		qr.ID, qr.Data, qr.QRType, qr.Title,
		cols[0], cols[1], cols[2], cols[3], nullString(qr.FileID),
	).Scan(&qr.CreatedAt, &qr.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
