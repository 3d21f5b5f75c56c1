// Package logger configures structured JSON logging (log/slog) and carries
// a per-tick trace ID through context.Context so one quote's signals and
// fills can be correlated across log lines.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
)

type ctxKey struct{}

// Init installs a JSON slog handler tagged with the service name and makes
// it the process default.
func Init(service string, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	l := slog.New(h).With(slog.String("service", service))
	slog.SetDefault(l)
	return l
}

// WithTraceID stores a trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, traceID)
}

// TraceID returns the trace ID from the context, or "" when absent.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// GenerateTraceID builds a "{symbol}-{unixNano}" trace ID. Cheap and
// unique enough for a single-process tick stream.
func GenerateTraceID(symbol string, ts time.Time) string {
	return fmt.Sprintf("%s-%d", symbol, ts.UnixNano())
}

// LogWithTrace returns slog attrs carrying the context's trace ID, or nil
// when no trace ID is set. Append to an attr list before logging.
func LogWithTrace(ctx context.Context) []any {
	id := TraceID(ctx)
	if id == "" {
		return nil
	}
	return []any{slog.String("trace_id", id)}
}
