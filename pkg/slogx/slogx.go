// Package slogx wires slog for the vault service: every logger carries the
// service/version/env triple, handlers write to stdout, and request-scoped
// loggers travel through context (see HTTPMiddleware).
package slogx

import (
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Service string
	Version string
	Env     string // "dev", "staging", "prod"
	Level   string // "debug", "info", "warn", "error"
	Format  string // "json" (default) or "text"
}

// New builds the process logger and installs it as the slog default, so
// libraries logging through slog.Default land in the same stream.
func New(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
		// Source locations are only worth the noise during development.
		AddSource: cfg.Env == "dev",
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	slog.SetDefault(logger)
	return logger
}

// parseLevel maps a level name to slog.Level, defaulting to info.
func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
