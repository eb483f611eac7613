package logging

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to Logger. Key–value args are
// attached as fields; a dangling key without a value is logged under "!BADKEY".
type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

func fields(args []any) map[string]any {
	m := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			m["!BADKEY"] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if err, isErr := args[i+1].(error); isErr {
			m[key] = err.Error()
			continue
		}
		m[key] = args[i+1]
	}
	return m
}

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.l.Debug().Ctx(ctx).Fields(fields(args)).Msg(msg)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	z.l.Info().Ctx(ctx).Fields(fields(args)).Msg(msg)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.l.Warn().Ctx(ctx).Fields(fields(args)).Msg(msg)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	z.l.Error().Ctx(ctx).Fields(fields(args)).Msg(msg)
}

func (z *ZerologLogger) With(args ...any) Logger {
	return &ZerologLogger{l: z.l.With().Fields(fields(args)).Logger()}
}
