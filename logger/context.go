package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey struct{}

type requestScope struct {
	id     string
	logger *zap.Logger
}

// WithRequest attaches a request id and a logger carrying it to ctx.
func WithRequest(ctx context.Context, log *zap.Logger, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestScope{
		id:     requestID,
		logger: log.With(zap.String("request_id", requestID)),
	})
}

// FromContext returns the request logger, or fallback outside a request.
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if scope, ok := ctx.Value(contextKey{}).(requestScope); ok {
		return scope.logger
	}
	return fallback
}

// RequestID returns the id set by WithRequest, or "".
func RequestID(ctx context.Context) string {
	if scope, ok := ctx.Value(contextKey{}).(requestScope); ok {
		return scope.id
	}
	return ""
}
