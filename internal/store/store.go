// Package store persists saved QR codes.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no QR code has the requested id.
var ErrNotFound = errors.New("qr code not found")

// Styles is the persisted dot and corner styling of a QR code.
type Styles struct {
	DotsStyle         string `json:"dotsStyle"`
	ForegroundColor   string `json:"foregroundColor"`
	BackgroundColor   string `json:"backgroundColor,omitempty"`
	CornerSquareStyle string `json:"cornerSquareStyle"`
	CornerDotStyle    string `json:"cornerDotStyle"`
}

// FrameOptions is the persisted frame of a QR code.
type FrameOptions struct {
	ID        string `json:"id"`
	Color     string `json:"color,omitempty"`
	TextColor string `json:"textColor,omitempty"`
	Text      string `json:"text,omitempty"`
}

// LogoOptions is the persisted logo of a QR code.
type LogoOptions struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	IconSrc string `json:"iconSrc,omitempty"`
	FileID  string `json:"fileId,omitempty"`
}

// QR is a saved QR code.
type QR struct {
	ID           string         `json:"id"`
	Data         string         `json:"data"`
	QRType       string         `json:"qrType"`
	Title        string         `json:"title"`
	FormData     map[string]any `json:"formData,omitempty"`
	Styles       Styles         `json:"styles"`
	FrameOptions FrameOptions   `json:"frameOptions"`
	LogoOptions  LogoOptions    `json:"logoOptions"`
	FileID       string         `json:"fileId,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Store is implemented by every QR code backend.
type Store interface {
	// Connect prepares the backend, running migrations where it has any.
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Create assigns qr an id and timestamps and stores it.
	Create(ctx context.Context, qr *QR) error
	// Update replaces the QR code with qr.ID, keeping its creation time.
	Update(ctx context.Context, qr *QR) error
	Get(ctx context.Context, id string) (*QR, error)
	// List returns every QR code, most recently updated first.
	List(ctx context.Context) ([]QR, error)
	Delete(ctx context.Context, id string) error
}

// Config selects and configures a backend.
type Config struct {
	Type         string
	FilePath     string
	DatabaseURL  string
	SSLEnabled   bool
	MaxIdleConns int
	MaxOpenConns int
	MaxLifetime  time.Duration
}

// New creates the Store named by cfg.Type. Supported types: "file", "postgres".
func New(cfg Config) (Store, error) {
	switch cfg.Type {
	case "", "file":
		return NewFileStore(cfg.FilePath)
	case "postgres":
		return NewPostgresStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (supported: file, postgres)", cfg.Type)
	}
}
