package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/builder"
	"github.com/cristianadrielbraun/qrstudio/internal/customization"
	"github.com/cristianadrielbraun/qrstudio/internal/forms"
	"github.com/cristianadrielbraun/qrstudio/internal/uploads"
)

type sessionResponse struct {
	State         builder.State          `json:"state"`
	Notifications []builder.Notification `json:"notifications,omitempty"`
}

// respond writes the session state. HTMX requests get the queued
// notifications as toasts and the state in an HX-Trigger event.
func (h *Handler) respond(c *gin.Context, s *builder.Session, status int) {
	notes := s.Inbox.Drain()
	st := s.State()
	if isHTMX(c) {
		if b, err := json.Marshal(gin.H{"builder:state": st}); err == nil {
			c.Header("HX-Trigger", string(b))
		}
		h.renderToasts(c, status, notes)
		return
	}
	c.JSON(status, sessionResponse{State: st, Notifications: notes})
}

// fail writes err. s may be nil when the session could not be found.
// HTMX only swaps successful responses, so HTMX requests get the error as a
// toast with status 200.
func (h *Handler) fail(c *gin.Context, s *builder.Session, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.lggr.Errorw("Request failed", "path", c.FullPath(), "status", status, "error", err)
	} else {
		h.lggr.Debugw("Request rejected", "path", c.FullPath(), "status", status, "error", err)
	}

	var notes []builder.Notification
	if s != nil {
		notes = s.Inbox.Drain()
	}

	if isHTMX(c) {
		if len(notes) == 0 {
			notes = []builder.Notification{{
				Variant:     builder.VariantError,
				Title:       http.StatusText(status),
				Description: err.Error(),
			}}
		}
		h.renderToasts(c, http.StatusOK, notes)
		return
	}

	body := gin.H{"error": err.Error()}
	var ve *forms.ValidationError
	if errors.As(err, &ve) {
		body["fieldErrors"] = ve.Fields
	}
	if len(notes) > 0 {
		body["notifications"] = notes
	}
	c.AbortWithStatusJSON(status, body)
}

func (h *Handler) session(c *gin.Context) (*builder.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.fail(c, nil, err)
		return nil, false
	}
	return s, true
}

// bind decodes the request body into v, from JSON or a form post.
func bind(c *gin.Context, v any) error {
	if err := c.ShouldBind(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

type createSessionRequest struct {
	QRID string `json:"qrId" form:"qrId"`
}

// CreateSession opens a builder session, prefilled from a saved QR code when
// qrId is given.
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := bind(c, &req); err != nil {
			h.fail(c, nil, err)
			return
		}
	}
	s, err := h.openSession(c, req.QRID)
	if err != nil {
		h.fail(c, nil, err)
		return
	}
	if isHTMX(c) {
		c.Header("HX-Redirect", "/builder/"+s.ID())
	}
	h.respond(c, s, http.StatusCreated)
}

func (h *Handler) openSession(c *gin.Context, qrID string) (*builder.Session, error) {
	var seed *builder.Seed
	if qrID != "" {
		var err error
		if seed, err = h.qrs.Seed(c.Request.Context(), qrID); err != nil {
			return nil, err
		}
	}
	return h.sessions.Create(seed), nil
}

func (h *Handler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, http.StatusOK)
}

func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		h.fail(c, nil, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type selectTypeRequest struct {
	Type string `json:"type" form:"type" binding:"required"`
}

func (h *Handler) SelectType(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req selectTypeRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, s, err)
		return
	}
	if err := s.SelectType(forms.Type(req.Type)); err != nil {
		h.fail(c, s, err)
		return
	}
	h.respond(c, s, http.StatusOK)
}

// Continue advances the wizard. On the content step the body carries the form
// values: a JSON object under "formData", or the fields of a form post.
func (h *Handler) Continue(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	values, err := formValues(c)
	if err != nil {
		h.fail(c, s, err)
		return
	}
	if err := s.Continue(values); err != nil {
		h.fail(c, s, err)
		return
	}
	h.respond(c, s, http.StatusOK)
}

func formValues(c *gin.Context) (forms.FormData, error) {
	if c.Request.ContentLength == 0 {
		return nil, nil
	}
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		var req struct {
			FormData forms.FormData `json:"formData"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return req.FormData, nil
	}
	if err := c.Request.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	values := forms.FormData{}
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			values[k] = v[0]
		}
	}
	return values, nil
}

func (h *Handler) Back(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Back(); err != nil {
		h.fail(c, s, err)
		return
	}
	h.respond(c, s, http.StatusOK)
}

type titleRequest struct {
	Title string `json:"title" form:"title" binding:"max=100"`
}

func (h *Handler) SetTitle(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req titleRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, s, err)
		return
	}
	if err := s.SetTitle(strings.TrimSpace(req.Title)); err != nil {
		h.fail(c, s, err)
		return
	}
	h.respond(c, s, http.StatusOK)
}

// SetCustomization replaces the customization with a JSON body. A form post
// changes only the fields it carries, named like the query of QRCodeHandler.
func (h *Handler) SetCustomization(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var data customization.Data
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		if err := c.ShouldBindJSON(&data); err != nil {
			h.fail(c, s, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	} else {
		if err := c.Request.ParseForm(); err != nil {
			h.fail(c, s, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		data = applyValues(s.Customization(), c.Request.PostForm.Get)
	}
	if err := s.SetCustomization(data); err != nil {
		h.fail(c, s, err)
		return
	}
	h.respond(c, s, http.StatusOK)
}

type frameRequest struct {
	FrameID string `json:"frameId" form:"frameId" binding:"required"`
}

func (h *Handler) SelectFrame(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req frameRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, s, err)
		return
	}
	if err := s.SelectFrame(req.FrameID); err != nil {
		h.fail(c, s, err)
		return
	}
	h.respond(c, s, http.StatusOK)
}

type suggestedLogoRequest struct {
	LogoID string `json:"logoId" form:"logoId" binding:"required"`
}

func (h *Handler) SelectSuggestedLogo(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req suggestedLogoRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, s, err)
		return
	}
	opt, found := customization.LookupLogo(req.LogoID)
	if !found {
		h.fail(c, s, fmt.Errorf("%w: unknown logo %q", errBadRequest, req.LogoID))
		return
	}
	h.setLogo(c, s, customization.Logo{Type: customization.LogoSuggested, ID: opt.ID, IconSrc: opt.IconSrc})
}

func (h *Handler) ClearLogo(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.setLogo(c, s, customization.Logo{Type: customization.LogoNone})
}

func (h *Handler) setLogo(c *gin.Context, s *builder.Session, logo customization.Logo) {
	data := s.Customization()
	data.Logo = logo
	if err := s.SetCustomization(data); err != nil {
		h.fail(c, s, err)
		return
	}
	h.respond(c, s, http.StatusOK)
}

// UploadLogo stores the multipart "file" as the logo. The preview shows the
// local file while it is being stored.
func (h *Handler) UploadLogo(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	name, data, err := h.readUpload(c)
	if err != nil {
		h.fail(c, s, err)
		return
	}

	local := &customization.LocalFile{Name: name, ContentType: http.DetectContentType(data), Data: data}
	if strings.HasSuffix(strings.ToLower(name), ".svg") {
		local.ContentType = "image/svg+xml"
	}
	if err := s.BeginUpload(local); err != nil {
		h.fail(c, s, err)
		return
	}

	stored, err := h.uploads.Put(c.Request.Context(), name, bytes.NewReader(data), uploads.LogoTypes)
	if err != nil {
		if ferr := s.FailUpload(err); ferr != nil {
			h.lggr.Warnw("Could not settle failed upload", "session", s.ID(), "error", ferr)
		}
		h.fail(c, s, err)
		return
	}
	if err := s.CompleteUpload(stored.ID); err != nil {
		h.fail(c, s, err)
		return
	}
	h.respond(c, s, http.StatusOK)
}

// UploadFile stores the multipart "file" as the content of a PDF, image or
// video QR code. The returned fileId goes into the content form.
func (h *Handler) UploadFile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	name, data, err := h.readUpload(c)
	if err != nil {
		h.fail(c, s, err)
		return
	}
	stored, err := h.uploads.Put(c.Request.Context(), name, bytes.NewReader(data), uploads.ContentTypes)
	if err != nil {
		h.fail(c, s, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// multipartOverhead is the room left for multipart headers and boundaries
// above the upload size limit.
const multipartOverhead = 64 << 10

// readUpload reads the multipart "file". The request body is capped so an
// oversized upload is rejected without being buffered.
func (h *Handler) readUpload(c *gin.Context) (string, []byte, error) {
	limit := h.uploads.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return "", nil, fmt.Errorf("%w: limit is %d bytes", uploads.ErrTooLarge, limit)
		}
		return "", nil, fmt.Errorf("%w: file is required", errBadRequest)
	}
	if fh.Size > limit {
		return "", nil, fmt.Errorf("%w: limit is %d bytes", uploads.ErrTooLarge, limit)
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", nil, err
	}
	if int64(len(data)) > limit {
		return "", nil, fmt.Errorf("%w: limit is %d bytes", uploads.ErrTooLarge, limit)
	}
	return fh.Filename, data, nil
}

func (h *Handler) Save(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if _, err := s.Save(c.Request.Context()); err != nil {
		h.fail(c, s, err)
		return
	}
	h.respond(c, s, http.StatusOK)
}
