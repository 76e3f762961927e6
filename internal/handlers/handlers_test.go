package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrstudio/internal/builder"
	"github.com/cristianadrielbraun/qrstudio/internal/customization"
	"github.com/cristianadrielbraun/qrstudio/internal/forms"
	"github.com/cristianadrielbraun/qrstudio/internal/logger"
	"github.com/cristianadrielbraun/qrstudio/internal/qrs"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
	"github.com/cristianadrielbraun/qrstudio/internal/store"
	"github.com/cristianadrielbraun/qrstudio/internal/uploads"
	"github.com/cristianadrielbraun/qrstudio/web/assets"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   *gin.Engine
	sessions *builder.Manager
	qrs      *qrs.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	lggr := logger.Test(t)

	up, err := uploads.New(t.TempDir(), "https://storage.getqr.com", 1<<20, lggr)
	require.NoError(t, err)

	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "qrs.json"))
	require.NoError(t, err)
	require.NoError(t, st.Connect(context.Background()))

	src := render.FSSource{FS: assets.FS}
	composer := &render.Composer{
		Logos:  &render.LogoResolver{Assets: src, Uploads: up, StorageBaseURL: "https://storage.getqr.com"},
		Frames: &render.FrameEmbedder{Assets: src},
		Lggr:   lggr,
	}
	svc := qrs.NewService(st, up.URL, lggr)
	sessions := builder.NewManager(builder.ManagerConfig{
		Composer:       composer,
		Saver:          svc,
		DefaultContent: "https://getqr.com",
		Debounce:       time.Millisecond,
		FileURL:        up.URL,
		Lggr:           lggr,
	})
	t.Cleanup(sessions.CloseAll)

	h := New(Deps{
		Composer:       composer,
		Sessions:       sessions,
		QRs:            svc,
		Uploads:        up,
		DefaultContent: "https://getqr.com",
		Lggr:           lggr,
	})
	r := gin.New()
	h.Register(r)
	return &testEnv{router: r, sessions: sessions, qrs: svc}
}

type apiResponse struct {
	State         builder.State          `json:"state"`
	Notifications []builder.Notification `json:"notifications"`
	Error         string                 `json:"error"`
	FieldErrors   map[string]string      `json:"fieldErrors"`
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var res apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/builder/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode(t, w)
	require.NotEmpty(t, res.State.ID)
	assert.Equal(t, builder.StepTypeSelect, res.State.Step)
	return res.State.ID
}

func sessionPath(id, suffix string) string {
	return "/api/builder/sessions/" + id + suffix
}

func pngLogo(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func (e *testEnv) upload(t *testing.T, path, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestQRCodeHandler(t *testing.T) {
	env := newTestEnv(t)

	t.Run("svg", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/qr?url=example.com&format=svg&dots=dots-rounded&frame=frame-card", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "<svg")
		assert.Contains(t, w.Body.String(), `viewBox="0 0 300 380"`)
	})
	t.Run("png", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/qr?url=https://example.com", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
	})
	t.Run("jpg", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/qr?url=https://example.com&format=jpeg", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	})
	t.Run("invalid url", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/qr?url="+url.QueryEscape("ftp://example.com"), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("missing logo degrades", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/qr?url=example.com&format=svg&fileId=missing.png", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<svg")
	})
}

func TestQRCodeHandler_CacheControl(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		query    string
		degraded bool
	}{
		{name: "svg", query: "format=svg"},
		{name: "png", query: "format=png"},
		{name: "svg missing logo", query: "format=svg&fileId=missing.png", degraded: true},
		{name: "png missing logo", query: "format=png&fileId=missing.png", degraded: true},
		{name: "jpg missing logo", query: "format=jpg&fileId=missing.png", degraded: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/qr?url=example.com&"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			if tt.degraded {
				assert.Equal(t, "true", w.Header().Get("X-QR-Degraded"))
				assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
				return
			}
			assert.Empty(t, w.Header().Get("X-QR-Degraded"))
			assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
		})
	}

	t.Run("errors are not cached", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/qr?url="+url.QueryEscape("ftp://example.com"), nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, w.Header().Get("Cache-Control"))
	})
}

func TestBuilderFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, sessionPath(id, "/continue"), nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, builder.ErrNoTypeSelected.Error(), decode(t, w).Error)

	w = env.do(t, http.MethodPost, sessionPath(id, "/type"), gin.H{"type": "website"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, forms.Website, decode(t, w).State.QRType)

	w = env.do(t, http.MethodPost, sessionPath(id, "/continue"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, builder.StepContentForm, decode(t, w).State.Step)

	// required field empty: stays on the content step
	w = env.do(t, http.MethodPost, sessionPath(id, "/continue"), gin.H{"formData": gin.H{"url": ""}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	res := decode(t, w)
	assert.Contains(t, res.FieldErrors, "url")

	w = env.do(t, http.MethodGet, sessionPath(id, ""), nil)
	assert.Equal(t, builder.StepContentForm, decode(t, w).State.Step)

	w = env.do(t, http.MethodPost, sessionPath(id, "/continue"), gin.H{"formData": gin.H{"url": "example.com"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res = decode(t, w)
	assert.Equal(t, builder.StepCustomization, res.State.Step)
	assert.True(t, res.State.CanSave)

	w = env.do(t, http.MethodPost, sessionPath(id, "/frame"), gin.H{"frameId": customization.FrameCard2})
	require.Equal(t, http.StatusOK, w.Code)
	frame := decode(t, w).State.Customization.Frame
	assert.Equal(t, customization.DefaultFrameColor, frame.Color)
	assert.Equal(t, "#000000", frame.TextColor)
	assert.Equal(t, customization.DefaultFrameText, frame.Text)

	w = env.do(t, http.MethodPut, sessionPath(id, "/title"), gin.H{"title": "  Homepage "})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, sessionPath(id, "/logo/suggested"), gin.H{"logoId": "logo-wifi"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, customization.LogoSuggested, decode(t, w).State.Customization.Logo.Type)

	w = env.do(t, http.MethodPost, sessionPath(id, "/save"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res = decode(t, w)
	require.NotEmpty(t, res.State.QRID)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, "QR code created", res.Notifications[0].Title)

	w = env.do(t, http.MethodGet, "/api/qrs/"+res.State.QRID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var saved store.QR
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "https://example.com", saved.Data)
	assert.Equal(t, "Homepage", saved.Title)
	assert.Equal(t, customization.FrameCard2, saved.FrameOptions.ID)
	assert.Equal(t, "logo-wifi", saved.LogoOptions.ID)

	// editing the saved QR code starts on the content step
	w = env.do(t, http.MethodPost, "/api/builder/sessions", gin.H{"qrId": saved.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	res = decode(t, w)
	assert.Equal(t, saved.ID, res.State.QRID)
	assert.Equal(t, builder.StepContentForm, res.State.Step)
	assert.Equal(t, customization.FrameCard2, res.State.Customization.Frame.ID)
}

func (e *testEnv) postForm(t *testing.T, method, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestBuilderPageForms(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, sessionPath(id, "/type"), gin.H{"type": "wifi"})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, sessionPath(id, "/continue"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// the content form posts its fields
	w = env.postForm(t, http.MethodPost, sessionPath(id, "/continue"), url.Values{
		"ssid": {"Cafe"}, "password": {"secret123"}, "encryption": {"WPA"}, "hidden": {"true"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode(t, w)
	assert.Equal(t, builder.StepCustomization, res.State.Step)
	assert.Equal(t, "Cafe", res.State.FormData["ssid"])

	w = env.do(t, http.MethodPost, sessionPath(id, "/frame"), gin.H{"frameId": customization.FrameCard})
	require.Equal(t, http.StatusOK, w.Code)

	// style controls post only the field they change
	w = env.postForm(t, http.MethodPut, sessionPath(id, "/customization"), url.Values{"dots": {customization.DotsRounded}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.postForm(t, http.MethodPut, sessionPath(id, "/customization"), url.Values{
		"cornerSquare": {customization.CornerSquareDot},
		"fg":           {"#112233"},
		"frameText":    {"Free wifi here"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	custom := decode(t, w).State.Customization
	assert.Equal(t, customization.DotsRounded, custom.Style.DotsStyle)
	assert.Equal(t, customization.CornerSquareDot, custom.Shape.CornerSquareStyle)
	assert.Equal(t, customization.CornerDotSquare, custom.Shape.CornerDotStyle)
	assert.Equal(t, "#112233", custom.Style.ForegroundColor)
	assert.Equal(t, customization.FrameCard, custom.Frame.ID)
	assert.Equal(t, "Free wifi ", custom.Frame.Text)

	page := env.do(t, http.MethodGet, "/builder/"+id, nil)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `data-step="3"`)
	assert.Contains(t, page.Body.String(), `name="fg" value="#112233"`)
}

func TestSave_Preconditions(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	env.do(t, http.MethodPost, sessionPath(id, "/type"), gin.H{"type": "text"})
	w := env.do(t, http.MethodPost, sessionPath(id, "/save"), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	saved, err := env.qrs.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestUploadLogo(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.upload(t, sessionPath(id, "/logo"), "logo.png", pngLogo(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode(t, w)
	assert.Equal(t, builder.UploadComplete, res.State.Upload.State)
	logo := res.State.Customization.Logo
	assert.Equal(t, customization.LogoUploaded, logo.Type)
	assert.True(t, strings.HasSuffix(logo.FileID, ".png"))

	w = env.upload(t, sessionPath(id, "/logo"), "notes.txt", []byte("plain text is not a logo"))
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	res = decode(t, w)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, builder.VariantError, res.Notifications[0].Variant)

	w = env.do(t, http.MethodGet, sessionPath(id, ""), nil)
	res = decode(t, w)
	assert.Equal(t, builder.UploadFailed, res.State.Upload.State)
	assert.Equal(t, customization.LogoNone, res.State.Customization.Logo.Type)
}

func TestUploadLogo_TooLarge(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	big := append(pngLogo(t), bytes.Repeat([]byte{0}, 2<<20)...)
	w := env.upload(t, sessionPath(id, "/logo"), "huge.png", big)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, sessionPath(id, ""), nil)
	assert.Equal(t, customization.LogoNone, decode(t, w).State.Customization.Logo.Type)
}

func TestServeUpload(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	doc := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><script>alert(1)</script><rect width="10" height="10"/></svg>`
	w := env.upload(t, sessionPath(id, "/logo"), "logo.svg", []byte(doc))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	fileID := decode(t, w).State.Customization.Logo.FileID
	require.True(t, strings.HasSuffix(fileID, ".png"), fileID)

	w = env.do(t, http.MethodGet, "/uploads/"+fileID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "sandbox")
	assert.NotContains(t, w.Body.String(), "<script")

	w = env.do(t, http.MethodGet, "/uploads/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadFile(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.upload(t, sessionPath(id, "/file"), "menu.pdf", []byte("%PDF-1.4\n%test\n"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var f uploads.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f))
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.Equal(t, "https://storage.getqr.com/"+f.ID, f.URL)

	env.do(t, http.MethodPost, sessionPath(id, "/type"), gin.H{"type": "pdf"})
	env.do(t, http.MethodPost, sessionPath(id, "/continue"), nil)
	w = env.do(t, http.MethodPost, sessionPath(id, "/continue"), gin.H{"formData": gin.H{"fileId": f.ID, "fileName": f.Name}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, sessionPath(id, "/save"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved, err := env.qrs.Get(context.Background(), decode(t, w).State.QRID)
	require.NoError(t, err)
	assert.Equal(t, f.URL, saved.Data)
	assert.Equal(t, f.ID, saved.FileID)
}

func TestSessionNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, sessionPath("nope", ""), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, sessionPath("nope", ""), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/builder/sessions", gin.H{"qrId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCloseSession(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodDelete, sessionPath(id, ""), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, env.sessions.Len())
}

func TestHTMXErrorsAreToasts(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, sessionPath(id, "/continue"), nil, "HX-Request", "true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "data-toast")
	assert.Contains(t, w.Body.String(), builder.ErrNoTypeSelected.Error())
}

func TestHTMXStateTrigger(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, sessionPath(id, "/type"), gin.H{"type": "wifi"}, "HX-Request", "true")
	require.Equal(t, http.StatusOK, w.Code)

	var trigger map[string]builder.State
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &trigger))
	assert.Equal(t, forms.WiFi, trigger["builder:state"].QRType)
}

func TestPreviewAndExport(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodGet, sessionPath(id, "/preview.svg"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<svg")

	w = env.do(t, http.MethodGet, sessionPath(id, "/export?format=png&size=200"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "qr-code.png")

	w = env.do(t, http.MethodGet, sessionPath(id, "/export?format=svg"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "qr-code.svg")
}

func TestPreviewStream(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + sessionPath(id, "/preview/ws")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	w := env.do(t, http.MethodPost, sessionPath(id, "/frame"), gin.H{"frameId": customization.FrameCard})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg previewMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if !msg.Loading && strings.Contains(msg.SVG, `viewBox="0 0 300 380"`) {
			break
		}
	}

	require.NoError(t, env.sessions.Close(id))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err.Error())
			break
		}
	}
}

func TestQRsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/qrs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"qrs":[]}`, w.Body.String())

	id, err := env.qrs.Save(context.Background(), builder.SavePayload{
		QRType:        forms.Text,
		FormData:      forms.FormData{"text": "hello"},
		Customization: customization.DefaultData(),
	})
	require.NoError(t, err)

	w = env.do(t, http.MethodDelete, "/api/qrs/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodGet, "/api/qrs/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenericToast(t *testing.T) {
	env := newTestEnv(t)
	form := url.Values{"title": {"Copied"}, "variant": {"info"}, "dismissible": {"on"}}
	req := httptest.NewRequest(http.MethodPost, "/api/htmx/toast", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Copied")
	assert.Contains(t, w.Body.String(), `data-variant="info"`)
	assert.Contains(t, w.Body.String(), "data-toast-dismiss")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&forms.ValidationError{Fields: map[string]string{"url": "required"}}, http.StatusUnprocessableEntity},
		{builder.ErrNoTypeSelected, http.StatusUnprocessableEntity},
		{builder.ErrLogoUploadPending, http.StatusConflict},
		{builder.ErrUploadInProgress, http.StatusConflict},
		{fmt.Errorf("%w: %w", builder.ErrSaveFailed, errors.New("db down")), http.StatusBadGateway},
		{builder.ErrSessionNotFound, http.StatusNotFound},
		{store.ErrNotFound, http.StatusNotFound},
		{uploads.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestParseSize(t *testing.T) {
	assert.Equal(t, render.PreviewSize, parseSize(""))
	assert.Equal(t, render.DownloadSize, parseSize("download"))
	assert.Equal(t, 300, parseSize("300"))
	assert.Equal(t, render.DownloadSize, parseSize("99999"))
	assert.Equal(t, render.PreviewSize, parseSize("-1"))
}
