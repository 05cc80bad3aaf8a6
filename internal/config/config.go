// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	QRSizePx         int `env:"QR_SIZE_PX" envDefault:"512"`
	PhotoWidth       int `env:"PHOTO_WIDTH" envDefault:"400"`
	PhotoHeight      int `env:"PHOTO_HEIGHT" envDefault:"350"`
	PhotoJPEGQuality int `env:"PHOTO_JPEG_QUALITY" envDefault:"90"`

	MaxPhotoPayloadBytes int   `env:"MAX_PHOTO_PAYLOAD_BYTES" envDefault:"2000"`
	MaxUploadBytes       int64 `env:"MAX_UPLOAD_BYTES" envDefault:"2097152"`

	// LogoUnlocked is the custom-logo entitlement granted to every request.
	LogoUnlocked bool   `env:"LOGO_UNLOCKED" envDefault:"false"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects sizes the pipeline cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.QRSizePx < 64:
		return fmt.Errorf("QR_SIZE_PX must be at least 64, got %d", c.QRSizePx)
	case c.PhotoWidth <= 0 || c.PhotoHeight <= 0:
		return fmt.Errorf("photo size must be positive, got %dx%d", c.PhotoWidth, c.PhotoHeight)
	case c.PhotoJPEGQuality < 1 || c.PhotoJPEGQuality > 100:
		return fmt.Errorf("PHOTO_JPEG_QUALITY must be in 1..100, got %d", c.PhotoJPEGQuality)
	case c.MaxPhotoPayloadBytes <= 0:
		return fmt.Errorf("MAX_PHOTO_PAYLOAD_BYTES must be positive, got %d", c.MaxPhotoPayloadBytes)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.Port }

// SlogLevel maps LOG_LEVEL to a slog level.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
