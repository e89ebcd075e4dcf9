package config

import (
	"github.com/olivier-w/chladni/internal/palette"
)

// Environment variables read by Load.
const (
	EnvWidth     = "CHLADNI_WIDTH"
	EnvHeight    = "CHLADNI_HEIGHT"
	EnvCapacity  = "CHLADNI_CAPACITY"
	EnvNormalize = "CHLADNI_NORMALIZE"
	EnvPalette   = "CHLADNI_PALETTE"
	EnvLogLevel  = "CHLADNI_LOG_LEVEL"
)

const (
	DefaultWidth    = 500
	DefaultHeight   = 500
	DefaultCapacity = 10
	DefaultLogLevel = "info"
)

// Config holds the defaults a new document starts from.
type Config struct {
	Width     int
	Height    int
	Capacity  int
	Normalize bool
	Palette   palette.ID
	LogLevel  string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Capacity:  DefaultCapacity,
		Normalize: true,
		Palette:   palette.Default,
		LogLevel:  DefaultLogLevel,
	}
}

// Load overlays the CHLADNI_* environment on Default. Unparseable or
// unknown values keep the default.
func Load() Config {
	cfg := Default()
	cfg.Width = EnvIntOr(EnvWidth, cfg.Width)
	cfg.Height = EnvIntOr(EnvHeight, cfg.Height)
	cfg.Capacity = EnvIntOr(EnvCapacity, cfg.Capacity)
	cfg.Normalize = EnvBoolOr(EnvNormalize, cfg.Normalize)
	if id, ok := palette.Lookup(EnvOr(EnvPalette, "")); ok {
		cfg.Palette = id
	}
	cfg.LogLevel = EnvOr(EnvLogLevel, cfg.LogLevel)
	return cfg
}
