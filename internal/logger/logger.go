// Package logger builds the structured loggers used across pwt.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// New returns a text logger writing to w at the given level.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// Empty or unknown levels fall back to info.
func New(w io.Writer, level string) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler)
}

// ParseLevel converts a level name to a slog level.
// trace has no slog equivalent and maps to debug.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
