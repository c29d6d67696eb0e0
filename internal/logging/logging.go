package logging

import (
	"github.com/gostonefire/flashkv/config"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New - Returns a logger writing to stderr.
//   - level is one of debug, info, warn or error, anything else gives info
//   - format is json or text, anything else gives text
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter - Same as New but writes to w
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// FromConfig - Returns a logger writing to stderr with level and format of the log section
func FromConfig(cfg config.LogConfig) *slog.Logger {
	return New(cfg.Level, cfg.Format)
}

// OrFromConfig - Returns logger, or a logger built from the log section if it is nil
func OrFromConfig(logger *slog.Logger, cfg config.LogConfig) *slog.Logger {
	if logger == nil {
		return FromConfig(cfg)
	}
	return logger
}

// Noop - Returns a logger that discards all output
func Noop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// OrNoop - Returns logger, or a no-op logger if it is nil
func OrNoop(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Noop()
	}
	return logger
}

// ParseLevel - Converts a level name to a slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
