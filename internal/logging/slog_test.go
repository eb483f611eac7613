package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := newSlog("debug", "text", &buf)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	want := []string{"level=DEBUG msg=dbg a=1", "level=INFO msg=inf b=2", "level=WARN msg=wrn c=3", "level=ERROR msg=err d=4"}
	for i, w := range want {
		assert.Contains(t, lines[i], w)
	}
}

func TestSlogLogger_DebugHiddenAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newSlog("info", "text", &buf)

	log.Debug(context.Background(), "restore detail", "store", "auth")
	assert.Empty(t, buf.String())

	log.Info(context.Background(), "hydration finished")
	assert.Contains(t, buf.String(), "msg=\"hydration finished\"")
}

func TestSlogLogger_WithChains(t *testing.T) {
	var buf bytes.Buffer
	root := newSlog("debug", "json", &buf)

	child := root.With("component", "store").With("key", "auth-storage")
	child.Debug(context.Background(), "write-through failed", "err", errors.New("disk full"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "store", rec["component"])
	assert.Equal(t, "auth-storage", rec["key"])
	assert.Equal(t, "disk full", rec["err"])

	buf.Reset()
	root.Info(context.Background(), "plain")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotContains(t, buf.String(), "component", "parent must not inherit child attributes")
}

func TestParseSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseSlogLevel(in), in)
	}
}

func TestSlogLogger_ContextDoesNotPanic(t *testing.T) {
	log := newSlog("debug", "text", &bytes.Buffer{})

	ctx := context.TODO()
	log.Info(ctx, "ctx-ok")
	log.Debug(ctx, "ctx-ok")
	log.Warn(ctx, "ctx-ok")
	log.Error(ctx, "ctx-ok")
}
