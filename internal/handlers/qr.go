package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/customization"
	"github.com/cristianadrielbraun/qrstudio/internal/forms"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

// QRCodeHandler renders a QR code for a URL without a builder session. The
// customization comes from the query: dots, cornerSquare, cornerDot, fg, bg,
// frame, frameText, frameColor, frameTextColor, logo (a suggested logo id) and
// fileId (an uploaded logo).
func (h *Handler) QRCodeHandler(c *gin.Context) {
	content := h.defaultContent
	if rawURL := strings.TrimSpace(c.Query("url")); rawURL != "" {
		normalized, err := forms.NormalizeURL(rawURL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		content = normalized
	}
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL parameter is required"})
		return
	}

	format := parseFormat(c.DefaultQuery("format", render.FormatPNG))
	data := customizationFromQuery(c)
	ctx := c.Request.Context()

	if format == render.FormatSVG {
		res, err := h.composer.Compose(ctx, data, content)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create QR code"})
			return
		}
		cacheUnlessDegraded(c, res.Degraded)
		c.Data(http.StatusOK, "image/svg+xml", []byte(res.SVG))
		return
	}

	res, err := h.composer.Export(ctx, data, content, format, parseSize(c.Query("size")))
	if err != nil {
		h.lggr.Errorw("Failed to export QR code", "format", format, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create QR code"})
		return
	}
	cacheUnlessDegraded(c, res.Degraded)
	c.Data(http.StatusOK, contentTypeFor(format), res.Data)
}

// cacheUnlessDegraded lets clients cache a complete rendering, which only
// changes with its query. A degraded one is retried on the next request.
func cacheUnlessDegraded(c *gin.Context, degraded []error) {
	if len(degraded) > 0 {
		c.Header("X-QR-Degraded", "true")
		c.Header("Cache-Control", "no-store")
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
}

func customizationFromQuery(c *gin.Context) customization.Data {
	data := applyValues(customization.DefaultData(), c.Query)

	switch {
	case c.Query("fileId") != "":
		data.Logo = customization.Logo{Type: customization.LogoUploaded, FileID: c.Query("fileId")}
	case c.Query("logo") != "":
		data.Logo = customization.Logo{Type: customization.LogoSuggested, ID: c.Query("logo")}
	}
	return data.Normalize()
}

// applyValues sets the style, shape and frame fields named dots, fg, bg,
// cornerSquare, cornerDot, frame, frameText, frameColor and frameTextColor
// that get returns non-empty. frame selects a frame with its defaults before
// the other frame fields apply.
func applyValues(data customization.Data, get func(string) string) customization.Data {
	if v := get("dots"); v != "" {
		data.Style.DotsStyle = v
	}
	if v := get("fg"); v != "" {
		data.Style.ForegroundColor = v
	}
	if v := get("bg"); v != "" {
		data.Style.BackgroundColor = v
	}
	if v := get("cornerSquare"); v != "" {
		data.Shape.CornerSquareStyle = v
	}
	if v := get("cornerDot"); v != "" {
		data.Shape.CornerDotStyle = v
	}

	if id := get("frame"); id != "" {
		data = data.SelectFrame(id)
	}
	if data.Frame.ID != customization.FrameNone {
		if v := get("frameText"); v != "" {
			data.Frame.Text = v
		}
		if v := get("frameColor"); v != "" {
			data.Frame.Color = v
		}
		if v := get("frameTextColor"); v != "" {
			data.Frame.TextColor = v
		}
	}
	return data
}
