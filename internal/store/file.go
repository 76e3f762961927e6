package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStore keeps every QR code in one JSON file.
type FileStore struct {
	filePath string

	mu  sync.RWMutex
	qrs map[string]QR
}

// NewFileStore returns a store backed by path. The file is read on Connect.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file path is required for file storage")
	}
	return &FileStore{filePath: path, qrs: make(map[string]QR)}, nil
}

// Connect loads the file. A missing file is an empty store.
func (s *FileStore) Connect(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.filePath, err)
	}

	var qrs []QR
	if err := json.Unmarshal(data, &qrs); err != nil {
		return fmt.Errorf("failed to parse %s: %w", s.filePath, err)
	}
	s.qrs = make(map[string]QR, len(qrs))
	for _, qr := range qrs {
		s.qrs[qr.ID] = qr
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) Ping(_ context.Context) error {
	_, err := os.Stat(filepath.Dir(s.filePath))
	return err
}

func (s *FileStore) Create(_ context.Context, qr *QR) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	qr.ID = uuid.NewString()
	qr.CreatedAt = now
	qr.UpdatedAt = now
	s.qrs[qr.ID] = *qr

	if err := s.flushLocked(); err != nil {
		delete(s.qrs, qr.ID)
		return err
	}
	return nil
}

func (s *FileStore) Update(_ context.Context, qr *QR) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.qrs[qr.ID]
	if !ok {
		return ErrNotFound
	}
	qr.CreatedAt = prev.CreatedAt
	qr.UpdatedAt = time.Now().UTC()
	s.qrs[qr.ID] = *qr

	if err := s.flushLocked(); err != nil {
		s.qrs[qr.ID] = prev
		return err
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) (*QR, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	qr, ok := s.qrs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &qr, nil
}

func (s *FileStore) List(_ context.Context) ([]QR, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedLocked(), nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.qrs[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.qrs, id)

	if err := s.flushLocked(); err != nil {
		s.qrs[id] = prev
		return err
	}
	return nil
}

func (s *FileStore) sortedLocked() []QR {
	qrs := make([]QR, 0, len(s.qrs))
	for _, qr := range s.qrs {
		qrs = append(qrs, qr)
	}
	slices.SortFunc(qrs, func(a, b QR) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return qrs
}

// flushLocked rewrites the file through a temporary file so a crash never
// leaves it half written.
func (s *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.sortedLocked(), "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.filePath)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.filePath)
}
