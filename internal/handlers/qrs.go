package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/store"
)

func (h *Handler) ListQRs(c *gin.Context) {
	qrs, err := h.qrs.List(c.Request.Context())
	if err != nil {
		h.fail(c, nil, err)
		return
	}
	if qrs == nil {
		qrs = []store.QR{}
	}
	c.JSON(http.StatusOK, gin.H{"qrs": qrs})
}

func (h *Handler) GetQR(c *gin.Context) {
	qr, err := h.qrs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, qr)
}

func (h *Handler) DeleteQR(c *gin.Context) {
	if err := h.qrs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, nil, err)
		return
	}
	c.Status(http.StatusNoContent)
}
