// Package logger builds the structured logger of the demo server.
//
// Usage:
//
//	log := logger.New(cfg.Log)
//	log.Info("server starting", "addr", cfg.Server.Addr())
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/taisey/cors/internal/config"
)

// New creates a logger that writes to stdout in the format and at the
// level that cfg specifies.
func New(cfg config.LogConfig) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter creates a logger that writes to w.
// Format "text" selects logfmt-style output; anything else selects JSON.
func NewWithWriter(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts a level name to a slog.Level.
// Unknown names yield Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// WithRequestID returns a logger that adds the request ID to all entries.
func WithRequestID(log *slog.Logger, requestID string) *slog.Logger {
	return log.With("request_id", requestID)
}

// WithComponent returns a logger that adds a component name to all entries.
func WithComponent(log *slog.Logger, component string) *slog.Logger {
	return log.With("component", component)
}
