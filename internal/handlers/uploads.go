package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/render"
	"github.com/cristianadrielbraun/qrstudio/internal/uploads"
)

// ServeUpload serves a stored upload. Uploads are user content, so they are
// served sandboxed and without type sniffing.
func (h *Handler) ServeUpload(c *gin.Context) {
	b, err := h.uploads.Open(c.Request.Context(), c.Param("fileId"))
	switch {
	case errors.Is(err, render.ErrAssetNotFound), errors.Is(err, uploads.ErrInvalidID):
		c.Status(http.StatusNotFound)
		return
	case err != nil:
		h.lggr.Errorw("Failed to read upload", "fileId", c.Param("fileId"), "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Security-Policy", "sandbox; default-src 'none'")
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, uploads.DetectType(b), b)
}
