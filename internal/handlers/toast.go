package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/builder"
	"github.com/cristianadrielbraun/qrstudio/web/components/toast"
)

const toastDuration = 2000

// GenericToast returns a Toast component rendered as HTML for HTMX swaps.
func (h *Handler) GenericToast(c *gin.Context) {
	p := toastProps(builder.Notification{
		Variant:     c.PostForm("variant"),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	})
	p.Dismissible = p.Dismissible || c.PostForm("dismissible") == "on"

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := toast.Toast(p).Render(c.Request.Context(), c.Writer); err != nil {
		h.lggr.Warnw("Failed to render toast", "error", err)
	}
}

// renderToasts writes one toast per notification. An empty list writes an
// empty fragment.
func (h *Handler) renderToasts(c *gin.Context, status int, notes []builder.Notification) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)

	for _, n := range notes {
		if err := toast.Toast(toastProps(n)).Render(c.Request.Context(), c.Writer); err != nil {
			h.lggr.Warnw("Failed to render toast", "error", err)
			return
		}
	}
}

// toastProps keeps error toasts on screen until dismissed.
func toastProps(n builder.Notification) toast.Props {
	v := toast.ParseVariant(n.Variant)
	p := toast.Props{
		Title:       n.Title,
		Description: n.Description,
		Variant:     v,
		Position:    toast.PositionBottomRight,
		Duration:    toastDuration,
		Icon:        true,
	}
	if v == toast.VariantError {
		p.Duration = 0
		p.Dismissible = true
	}
	return p
}
