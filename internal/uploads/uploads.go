// Package uploads stores user uploaded logos and content files on disk and
// addresses them by file id.
package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/cristianadrielbraun/qrstudio/internal/logger"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

var (
	ErrTooLarge        = errors.New("file is too large")
	ErrUnsupportedType = errors.New("file type is not supported")
	ErrEmpty           = errors.New("file is empty")
	ErrInvalidID       = errors.New("invalid file id")
)

// svgRasterSize is the width of the PNG an uploaded SVG is stored as.
const svgRasterSize = 512

// LogoTypes are accepted for uploaded logos. SVG documents are stored
// rasterized as PNG.
var LogoTypes = []string{"image/png", "image/jpeg", "image/svg+xml", "image/webp"}

// ContentTypes are accepted for the files PDF, image and video QR codes link to.
var ContentTypes = []string{
	"application/pdf",
	"image/png", "image/jpeg", "image/gif", "image/webp",
	"video/mp4", "video/webm", "video/quicktime",
}

// File is a stored upload.
type File struct {
	ID          string `json:"fileId"`
	Name        string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

// Store writes uploads under Dir. Files are named by their id, which carries
// the extension of the detected type.
type Store struct {
	dir      string
	baseURL  string
	maxBytes int64
	lggr     logger.Logger
}

var _ render.AssetSource = (*Store)(nil)

func New(dir, baseURL string, maxBytes int64, lggr logger.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("uploads directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &Store{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		lggr:     lggr.Named("Uploads"),
	}, nil
}

// Put stores r under a new file id. The type is detected from the content and
// must be one of accept.
func (s *Store) Put(ctx context.Context, name string, r io.Reader, accept []string) (*File, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}

	mt := mimetype.Detect(data)
	if !accepted(mt, accept) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	ct, ext := contentType(mt), mt.Extension()
	if mt.Is("image/svg+xml") {
		// never serve user authored SVG documents
		if data, err = rasterize(data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
		}
		ct, ext = "image/png", ".png"
	}

	id := uuid.NewString() + ext
	if err := s.write(id, data); err != nil {
		return nil, err
	}

	f := &File{
		ID:          id,
		Name:        filepath.Base(name),
		ContentType: ct,
		Size:        int64(len(data)),
		URL:         s.URL(id),
	}
	s.lggr.Infow("Stored upload", "fileId", id, "contentType", f.ContentType, "size", f.Size)
	return f, nil
}

// Open reads the upload with fileID.
func (s *Store) Open(ctx context.Context, fileID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(fileID)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", render.ErrAssetNotFound, fileID)
	}
	return b, err
}

// Delete removes the upload with fileID. Removing a missing file is not an
// error.
func (s *Store) Delete(fileID string) error {
	p, err := s.path(fileID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// URL is the public URL of fileID.
func (s *Store) URL(fileID string) string {
	return s.baseURL + "/" + url.PathEscape(fileID)
}

// MaxBytes is the largest accepted upload.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// Dir is where uploads are written.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(fileID string) (string, error) {
	if fileID == "" || fileID != filepath.Base(fileID) || strings.HasPrefix(fileID, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, fileID)
	}
	return filepath.Join(s.dir, fileID), nil
}

func (s *Store) write(id string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write upload: %w", err)
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, id))
}

func accepted(mt *mimetype.MIME, accept []string) bool {
	for _, a := range accept {
		if mt.Is(a) {
			return true
		}
	}
	return false
}

func rasterize(svg []byte) ([]byte, error) {
	img, err := render.RasterizeSVG(svg, svgRasterSize)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DetectType is the content type of a stored upload.
func DetectType(b []byte) string {
	return contentType(mimetype.Detect(b))
}

// contentType drops parameters such as charset from the detected type.
func contentType(mt *mimetype.MIME) string {
	ct, _, _ := strings.Cut(mt.String(), ";")
	return ct
}
