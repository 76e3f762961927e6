package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/cristianadrielbraun/qrstudio/internal/builder"
	"github.com/cristianadrielbraun/qrstudio/internal/forms"
	"github.com/cristianadrielbraun/qrstudio/internal/logger"
	"github.com/cristianadrielbraun/qrstudio/internal/qrs"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
	"github.com/cristianadrielbraun/qrstudio/internal/store"
	"github.com/cristianadrielbraun/qrstudio/internal/uploads"
)

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Composer *render.Composer
	Sessions *builder.Manager
	QRs      *qrs.Service
	Uploads  *uploads.Store
	// DefaultContent is encoded by stateless renders without a url.
	DefaultContent string
	Lggr           logger.Logger
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	composer       *render.Composer
	sessions       *builder.Manager
	qrs            *qrs.Service
	uploads        *uploads.Store
	defaultContent string
	lggr           logger.Logger
	upgrader       websocket.Upgrader
}

// New returns a new Handler instance.
func New(d Deps) *Handler {
	return &Handler{
		composer:       d.Composer,
		sessions:       d.Sessions,
		qrs:            d.QRs,
		uploads:        d.Uploads,
		defaultContent: d.DefaultContent,
		lggr:           d.Lggr.Named("HTTP"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  4096,
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.GET("/qr", h.QRCodeHandler)
		api.POST("/htmx/toast", h.GenericToast)

		api.GET("/qrs", h.ListQRs)
		api.GET("/qrs/:id", h.GetQR)
		api.DELETE("/qrs/:id", h.DeleteQR)

		api.POST("/builder/sessions", h.CreateSession)
		s := api.Group("/builder/sessions/:id")
		{
			s.GET("", h.GetSession)
			s.DELETE("", h.CloseSession)
			s.POST("/type", h.SelectType)
			s.POST("/continue", h.Continue)
			s.POST("/back", h.Back)
			s.PUT("/title", h.SetTitle)
			s.PUT("/customization", h.SetCustomization)
			s.POST("/frame", h.SelectFrame)
			s.POST("/logo", h.UploadLogo)
			s.POST("/logo/suggested", h.SelectSuggestedLogo)
			s.DELETE("/logo", h.ClearLogo)
			s.POST("/file", h.UploadFile)
			s.POST("/save", h.Save)
			s.GET("/preview.svg", h.PreviewSVG)
			s.GET("/preview/ws", h.PreviewStream)
			s.GET("/export", h.Export)
		}
	}
	r.GET("/uploads/:fileId", h.ServeUpload)
	r.GET("/builder", h.NewBuilderPage)
	r.GET("/builder/:id", h.BuilderPage)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var ve *forms.ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, builder.ErrNoTypeSelected),
		errors.Is(err, forms.ErrUnknownType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, builder.ErrSessionNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, builder.ErrSaveFailed):
		return http.StatusBadGateway
	case builder.IsPrecondition(err):
		return http.StatusConflict
	case errors.Is(err, uploads.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, uploads.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, uploads.ErrEmpty), errors.Is(err, uploads.ErrInvalidID), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func isHTMX(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("HX-Request"), "true")
}
