package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"note-weave/internal/config"
)

var (
	singleton *slog.Logger
	once      sync.Once
)

// Init initializes the singleton logger from the provided config.
// It is thread-safe and idempotent - the first successful call wins,
// and subsequent calls return the same logger instance.
func Init(cfg config.Config) (*slog.Logger, error) {
	once.Do(func() {
		singleton = slog.New(newHandler(os.Stdout, cfg))
		slog.SetDefault(singleton)
	})

	return singleton, nil
}

// L returns the singleton logger instance.
// Before Init it falls back to slog.Default so early callers never get nil.
func L() *slog.Logger {
	if singleton == nil {
		return slog.Default()
	}
	return singleton
}

// ParseLevel maps LOG_LEVEL values onto slog levels. Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func newHandler(w io.Writer, cfg config.Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.LogLevel),
		AddSource: cfg.DevMode,
	}

	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
