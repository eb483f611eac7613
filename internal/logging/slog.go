package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// SlogLogger adapts a *slog.Logger to Logger.
type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// parseSlogLevel maps a config level name to a slog level. Unknown names
// fall back to info.
func parseSlogLevel(level string) slog.Level {
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

func newSlog(level, format string, w io.Writer) *SlogLogger {
	opts := &slog.HandlerOptions{Level: parseSlogLevel(level)}
	if strings.EqualFold(format, "json") {
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, opts)))
	}
	return NewSlogLogger(slog.New(slog.NewTextHandler(w, opts)))
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

// With returns a child logger; attributes accumulate across chained calls.
func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
