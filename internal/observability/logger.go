package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the JSON logger used across the service. Records carry
// trace_id/span_id whenever the context holds a recording span.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler))
}
