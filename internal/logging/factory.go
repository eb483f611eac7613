package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	BackendSlog    = "slog"
	BackendZerolog = "zerolog"
)

// New builds a Logger writing to w.
//
// backend: "slog" or "zerolog" (defaults to slog).
// level: "debug", "info", "warn", "error" (defaults to info).
// format: "json" or "text" (defaults to text).
func New(backend, level, format string, w io.Writer) Logger {
	if strings.EqualFold(backend, BackendZerolog) {
		return newZerolog(level, format, w)
	}
	return newSlog(level, format, w)
}

func newZerolog(level, format string, w io.Writer) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return NewZerologLogger(zerolog.New(out).Level(lvl).With().Timestamp().Logger())
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
