// Package logger configures structured logging for every prism service.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Format selects the log output encoding.
type Format string

const (
	// FormatJSON is the production default.
	FormatJSON Format = "json"
	// FormatText is easier to read during development.
	FormatText Format = "text"
)

// New builds a slog.Logger from LOG_LEVEL and LOG_FORMAT.
//
// LOG_LEVEL: debug, info, warn, error (default info)
// LOG_FORMAT: json, text (default json)
func New(service string) *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	}

	var handler slog.Handler
	switch Format(strings.ToLower(os.Getenv("LOG_FORMAT"))) {
	case FormatText:
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	l := slog.New(handler)
	if service != "" {
		l = l.With("service", service)
	}
	return l
}

// SetDefault installs the logger as the process-wide slog default.
func SetDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
