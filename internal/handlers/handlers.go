package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/cardqr/internal/asset"
	"github.com/cristianadrielbraun/cardqr/internal/config"
	"github.com/cristianadrielbraun/cardqr/internal/pipeline"
)

// Entitlements answers whether the caller may embed a custom logo.
type Entitlements interface {
	CustomLogo(c *gin.Context) bool
}

// StaticEntitlements grants or denies the custom logo to every request.
type StaticEntitlements bool

// CustomLogo implements Entitlements.
func (s StaticEntitlements) CustomLogo(*gin.Context) bool { return bool(s) }

// Handler holds the dependencies of the HTTP endpoints.
type Handler struct {
	pipeline     *pipeline.Pipeline
	cfg          *config.Config
	cropper      *asset.Cropper
	entitlements Entitlements
	logger       *slog.Logger
}

// New returns a Handler. The logo entitlement defaults to cfg.LogoUnlocked.
func New(p *pipeline.Pipeline, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		pipeline:     p,
		cfg:          cfg,
		cropper:      asset.NewCropper(cfg.PhotoJPEGQuality),
		entitlements: StaticEntitlements(cfg.LogoUnlocked),
		logger:       logger,
	}
}

// WithEntitlements replaces the logo entitlement check.
func (h *Handler) WithEntitlements(e Entitlements) *Handler {
	if e != nil {
		h.entitlements = e
	}
	return h
}

// Register mounts the API routes on r.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.POST("/vcard/qr", h.VCardQR)
		api.POST("/vcard/preview", h.CardPreview)
		api.POST("/vcard/preview.png", h.CardPreviewPNG)
		api.POST("/vcard/file", h.VCardFile)
		api.POST("/htmx/toast", h.GenericToast)
	}
}
