package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cristianadrielbraun/cardqr/internal/config"
	"github.com/cristianadrielbraun/cardqr/internal/handlers"
	"github.com/cristianadrielbraun/cardqr/internal/metrics"
	"github.com/cristianadrielbraun/cardqr/internal/pipeline"
	"github.com/cristianadrielbraun/cardqr/internal/qr"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	style := qr.DefaultStyle()
	style.SizePx = cfg.QRSizePx
	p := pipeline.New(pipeline.Options{
		PhotoWidth:           cfg.PhotoWidth,
		PhotoHeight:          cfg.PhotoHeight,
		PhotoQuality:         cfg.PhotoJPEGQuality,
		MaxPhotoPayloadBytes: cfg.MaxPhotoPayloadBytes,
		Style:                &style,
		Metrics:              metrics.New(prometheus.DefaultRegisterer),
		Logger:               logger,
	})

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 2 * cfg.MaxUploadBytes

	handlers.New(p, cfg, logger).Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("cardqr listening", "addr", cfg.Addr(), "logo_unlocked", cfg.LogoUnlocked)
	if err := r.Run(cfg.Addr()); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
