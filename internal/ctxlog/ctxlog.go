// Package ctxlog carries the application's two loggers through
// context.Context: the application log, which users see, and the debug log,
// which is only populated with --debug-log or --debug-log-to-file.
package ctxlog

import (
	"context"
	"log/slog"
)

// key is an unexported type to prevent collisions with context keys from other packages.
type key int

const (
	appKey key = iota
	debugKey
)

// WithLogger returns a new context with the application logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, appKey, logger)
}

// WithDebugLogger returns a new context with the debug logger embedded.
func WithDebugLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, debugKey, logger)
}

// FromContext extracts the application logger. If no logger is found, it
// returns the default global logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(appKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// DebugFromContext extracts the debug logger, falling back to the
// application logger.
func DebugFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(debugKey).(*slog.Logger); ok {
		return logger
	}
	return FromContext(ctx)
}
