package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/cristianadrielbraun/qrstudio/internal/builder"
	"github.com/cristianadrielbraun/qrstudio/internal/preview"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
	"github.com/cristianadrielbraun/qrstudio/web/pages"
)

const (
	previewWait = 5 * time.Second
	pingPeriod  = 30 * time.Second
	pongWait    = 60 * time.Second
	writeWait   = 10 * time.Second
)

// PreviewSVG returns the preview once no rendering is in flight.
func (h *Handler) PreviewSVG(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st, err := h.waitPreview(c.Request.Context(), s)
	if err != nil {
		h.fail(c, s, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml", []byte(st.SVG))
}

func (h *Handler) waitPreview(ctx context.Context, s *builder.Session) (preview.State, error) {
	ctx, cancel := context.WithTimeout(ctx, previewWait)
	defer cancel()
	st, err := s.Preview().Wait(ctx)
	if err != nil {
		return st, err
	}
	if st.SVG == "" {
		return st, fmt.Errorf("preview is not available: %s", st.Err)
	}
	return st, nil
}

// Export downloads the session's QR code as png, jpg or svg.
func (h *Handler) Export(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	format := parseFormat(c.DefaultQuery("format", render.FormatPNG))

	if format == render.FormatSVG {
		st, err := h.waitPreview(c.Request.Context(), s)
		if err != nil {
			h.fail(c, s, err)
			return
		}
		attach(c, "qr-code.svg")
		c.Data(http.StatusOK, "image/svg+xml", []byte(st.SVG))
		return
	}

	content := s.Content()
	if content == "" {
		content = s.Preview().DefaultContent()
	}
	res, err := h.composer.Export(c.Request.Context(), s.Customization(), content, format, parseSize(c.Query("size")))
	if err != nil {
		h.fail(c, s, err)
		return
	}
	attach(c, "qr-code."+format)
	c.Data(http.StatusOK, contentTypeFor(format), res.Data)
}

func attach(c *gin.Context, name string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
}

type previewMessage struct {
	SVG        string `json:"svg"`
	Generation uint64 `json:"generation"`
	Loading    bool   `json:"loading"`
	Degraded   bool   `json:"degraded,omitempty"`
	Error      string `json:"error,omitempty"`
}

func messageOf(st preview.State) previewMessage {
	return previewMessage{
		SVG:        st.SVG,
		Generation: st.Generation,
		Loading:    st.Loading,
		Degraded:   st.Degraded,
		Error:      st.Err,
	}
}

// PreviewStream upgrades to a WebSocket and pushes every published preview.
// The stream ends when either side closes or the session is closed.
func (h *Handler) PreviewStream(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.lggr.Warnw("WebSocket upgrade failed", "session", s.ID(), "error", err)
		return
	}
	defer conn.Close()

	pv := s.Preview()
	updates := pv.Subscribe()
	defer pv.Unsubscribe(updates)

	lggr := h.lggr.With("session", s.ID())
	lggr.Debugw("Preview stream opened")

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := writeJSON(conn, messageOf(pv.State())); err != nil {
		return
	}
	for {
		select {
		case st, ok := <-updates:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := writeJSON(conn, messageOf(st)); err != nil {
				lggr.Debugw("Preview stream write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			lggr.Debugw("Preview stream closed by client")
			return
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// NewBuilderPage opens a session, for the saved QR code in ?qrId when given,
// and redirects to its page.
func (h *Handler) NewBuilderPage(c *gin.Context) {
	s, err := h.openSession(c, c.Query("qrId"))
	if err != nil {
		c.String(statusFor(err), err.Error())
		return
	}
	c.Redirect(http.StatusSeeOther, "/builder/"+s.ID())
}

func (h *Handler) BuilderPage(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/builder")
		return
	}
	st := s.State()
	props := pages.BuilderProps{
		SessionID: st.ID,
		Step:      int(st.Step),
		QRType:    string(st.QRType),
		Title:     st.Title,
		FormData:  st.FormData,
		Custom:    st.Customization,
	}
	if pst, err := h.waitPreview(c.Request.Context(), s); err == nil {
		props.PreviewSVG = pst.SVG
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := pages.BuilderPage(props).Render(c.Request.Context(), c.Writer); err != nil {
		h.lggr.Errorw("Failed to render builder page", "error", err)
	}
}

func parseFormat(s string) string {
	switch strings.ToLower(s) {
	case "jpg", "jpeg":
		return render.FormatJPG
	case "svg":
		return render.FormatSVG
	default:
		return render.FormatPNG
	}
}

// parseSize accepts "preview", "download" or a pixel width.
func parseSize(s string) int {
	switch s {
	case "", "preview":
		return render.PreviewSize
	case "download":
		return render.DownloadSize
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return render.PreviewSize
	}
	return min(n, render.DownloadSize)
}

func contentTypeFor(format string) string {
	switch format {
	case render.FormatJPG:
		return "image/jpeg"
	case render.FormatSVG:
		return "image/svg+xml"
	default:
		return "image/png"
	}
}
