package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns the service's JSON logger on stdout. Records carry the service name, and
// TraceHandler adds trace, request and user ids from the context.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if env == "dev" {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	handler := slog.NewJSONHandler(w, opts).WithAttrs([]slog.Attr{
		slog.String("service", "inkwell"),
		slog.String("env", env),
	})

	return slog.New(NewTraceHandler(handler))
}
