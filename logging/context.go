package logging

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

// RunIDKey is the context key for the batch run identifier.
const RunIDKey ctxKey = "run_id"

// WithContext creates a child logger carrying the run ID stored in ctx, if any.
func WithContext(logger Logger, ctx context.Context) Logger {
	if id := GetRunID(ctx); id != "" {
		return logger.With(RunID(id))
	}
	return logger
}

// GetRunID extracts the run ID from context.
func GetRunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(RunIDKey).(string); ok {
		return s
	}
	return ""
}

// SetRunID adds the run ID to context.
func SetRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

type loggerKey struct{}

// FromContext returns the Logger stored in the context, or the global logger if none.
func FromContext(ctx context.Context) Logger {
	if ctx == nil {
		return Global()
	}
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return Global()
}

// ToContext stores the Logger in the context.
func ToContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// RunID is the field naming a batch run.
func RunID(id string) zap.Field { return zap.String("run_id", id) }
