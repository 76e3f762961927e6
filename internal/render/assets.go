package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

var (
	// ErrAssetNotFound is returned when an asset does not exist at its source.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrInvalidAssetName is returned for names that are not a relative path
	// below the source's base.
	ErrInvalidAssetName = errors.New("invalid asset name")
)

// AssetSource loads frame artwork and logo images by catalog path.
type AssetSource interface {
	Open(ctx context.Context, name string) ([]byte, error)
}

// FSSource reads assets from a filesystem, usually the embedded web assets.
type FSSource struct {
	FS fs.FS
}

func (s FSSource) Open(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := fs.ReadFile(s.FS, strings.TrimPrefix(path.Clean("/"+name), "/"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
	}
	return b, err
}

// HTTPSource fetches assets relative to BaseURL, retrying transient failures.
type HTTPSource struct {
	BaseURL  string
	Client   *http.Client
	Attempts uint
	Timeout  time.Duration
	// MaxBytes caps the size of a fetched asset.
	MaxBytes int64
}

func (s HTTPSource) Open(ctx context.Context, name string) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	attempts := s.Attempts
	if attempts == 0 {
		attempts = 1
	}
	maxBytes := s.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	rel, err := relativeName(name)
	if err != nil {
		return nil, err
	}
	url := strings.TrimRight(s.BaseURL, "/") + "/" + rel

	return retry.DoWithData(func() ([]byte, error) {
		rctx := ctx
		if s.Timeout > 0 {
			var cancel context.CancelFunc
			rctx, cancel = context.WithTimeout(ctx, s.Timeout)
			defer cancel()
		}

		req, err := http.NewRequestWithContext(rctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, retry.Unrecoverable(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, retry.Unrecoverable(fmt.Errorf("%w: %s", ErrAssetNotFound, url))
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return nil, retry.Unrecoverable(fmt.Errorf("fetch %s: status %d", url, resp.StatusCode))
		}

		return io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

// relativeName rejects names carrying a scheme, a host or a parent segment so
// a source only ever reads below its own base.
func relativeName(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, ":\\?#") || strings.HasPrefix(name, "//") {
		return "", fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	clean := path.Clean("/" + name)
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
		}
	}
	return strings.TrimPrefix(clean, "/"), nil
}

// contentTypeOf guesses the MIME type of an asset from its name, then from
// its bytes.
func contentTypeOf(name string, data []byte) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == ".svg" {
		return "image/svg+xml"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	ct := http.DetectContentType(data)
	if strings.HasPrefix(ct, "text/xml") || strings.HasPrefix(ct, "text/plain") {
		if strings.Contains(string(data[:min(len(data), 512)]), "<svg") {
			return "image/svg+xml"
		}
	}
	return ct
}
