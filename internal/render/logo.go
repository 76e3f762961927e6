package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cristianadrielbraun/qrstudio/internal/customization"
)

// LogoResolver turns a customization logo into something the renderer can
// embed: a data URL or a deterministic storage URL.
type LogoResolver struct {
	// Assets serves suggested logo icons.
	Assets AssetSource
	// Uploads serves persisted uploads by file id. Only exports need it; the
	// SVG preview links uploads by URL.
	Uploads AssetSource
	// StorageBaseURL prefixes file ids of persisted uploads.
	StorageBaseURL string
}

// Resolve returns the image href for logo, or "" when there is nothing to
// draw. Errors are asset failures; callers render without a logo.
func (r *LogoResolver) Resolve(ctx context.Context, logo customization.Logo) (string, error) {
	switch logo.Type {
	case customization.LogoUploaded:
		if logo.File != nil && len(logo.File.Data) > 0 {
			ct := logo.File.ContentType
			if ct == "" {
				ct = contentTypeOf(logo.File.Name, logo.File.Data)
			}
			return DataURL(ct, logo.File.Data), nil
		}
		if logo.FileID != "" {
			return r.UploadURL(logo.FileID), nil
		}
		return "", nil
	case customization.LogoSuggested:
		src, ok := suggestedSrc(logo)
		if !ok {
			return "", nil
		}
		b, err := r.Assets.Open(ctx, src)
		if err != nil {
			return "", fmt.Errorf("load logo %s: %w", src, err)
		}
		return DataURL(contentTypeOf(src, b), b), nil
	default:
		return "", nil
	}
}

// Load returns the raw bytes and content type of logo for raster exports.
// ok is false when there is no logo to draw.
func (r *LogoResolver) Load(ctx context.Context, logo customization.Logo) (data []byte, contentType string, ok bool, err error) {
	switch logo.Type {
	case customization.LogoUploaded:
		if logo.File != nil && len(logo.File.Data) > 0 {
			ct := logo.File.ContentType
			if ct == "" {
				ct = contentTypeOf(logo.File.Name, logo.File.Data)
			}
			return logo.File.Data, ct, true, nil
		}
		if logo.FileID == "" {
			return nil, "", false, nil
		}
		if r.Uploads == nil {
			return nil, "", false, fmt.Errorf("load upload %s: no upload source", logo.FileID)
		}
		b, err := r.Uploads.Open(ctx, logo.FileID)
		if err != nil {
			return nil, "", false, fmt.Errorf("load upload %s: %w", logo.FileID, err)
		}
		return b, http.DetectContentType(b), true, nil
	case customization.LogoSuggested:
		src, found := suggestedSrc(logo)
		if !found {
			return nil, "", false, nil
		}
		b, err := r.Assets.Open(ctx, src)
		if err != nil {
			return nil, "", false, fmt.Errorf("load logo %s: %w", src, err)
		}
		return b, contentTypeOf(src, b), true, nil
	default:
		return nil, "", false, nil
	}
}

// UploadURL is the public URL of a persisted upload.
func (r *LogoResolver) UploadURL(fileID string) string {
	return strings.TrimRight(r.StorageBaseURL, "/") + "/" + url.PathEscape(fileID)
}

// suggestedSrc looks the logo up in the catalog. IconSrc carried by the logo
// is ignored. Unknown ids are no selection.
func suggestedSrc(logo customization.Logo) (string, bool) {
	opt, ok := customization.LookupLogo(logo.ID)
	if !ok {
		return "", false
	}
	return opt.IconSrc, true
}

// DataURL encodes b as a base64 data URL.
func DataURL(contentType string, b []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(b)
}

// DecodeDataURL reverses DataURL.
func DecodeDataURL(s string) (contentType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		u, err := url.PathUnescape(payload)
		return contentType, []byte(u), err
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	return contentType, data, err
}
