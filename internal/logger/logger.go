package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jcorme/gradevue/internal/config"
)

// New returns a logger writing to stderr. See NewWithWriter.
func New(cfg config.LogConfig) *slog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter returns a logger writing to w. LOG_FORMAT=text selects the
// text handler, with source locations; any other value selects JSON.
// The process-wide default logger is left untouched.
func NewWithWriter(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	if strings.EqualFold(cfg.Format, "text") {
		opts.AddSource = true

		return slog.New(slog.NewTextHandler(w, opts))
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel parses a level name such as "debug" or "WARN". Unknown or empty
// names give slog.LevelInfo.
func ParseLevel(s string) slog.Level {
	var l slog.Level

	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}

	return l
}
