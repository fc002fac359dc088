package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey struct{}

// WithLogger returns a new context with the logger attached.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger from the context, or the default logger
// if none is attached.
func FromContext(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*zerolog.Logger); ok {
		return logger
	}
	return Default()
}

// WithCollection returns a context whose logger carries a collection field.
func WithCollection(ctx context.Context, key string) context.Context {
	logger := FromContext(ctx).With().Str("collection", key).Logger()
	return WithLogger(ctx, &logger)
}

// WithClass returns a context whose logger carries a class field.
func WithClass(ctx context.Context, class string) context.Context {
	logger := FromContext(ctx).With().Str("class", class).Logger()
	return WithLogger(ctx, &logger)
}
