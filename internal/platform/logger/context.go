package logger

import (
	"context"
	"log/slog"
)

// loggerKey is the context key type for storing a logger. Unexported to
// avoid collisions with other packages' context keys.
type loggerKey struct{}

// WithLogger returns a context carrying the given logger. Request-scoped
// middleware uses this to thread per-request loggers through call chains.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

// FromContext returns the logger stored in ctx, or the process default
// logger when none is set. It never returns nil.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return slog.Default()
}

// FromContextOrDefault returns the logger stored in ctx, falling back to
// the provided default rather than the process default. Components with
// their own component-tagged logger use this so request-scoped loggers
// still win when present.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
