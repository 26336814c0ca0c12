// Package requestctx carries per-request values (logger, trace, visitor)
// between middleware and handlers.
package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type key int

const (
	loggerKey key = iota
	traceKey
	visitorKey
)

var noopLogger = zap.NewNop()

// TraceInfo is the trace metadata propagated through a request.
type TraceInfo struct {
	TraceID string
	SpanID  string
	Sampled bool
}

func with(ctx context.Context, k key, v any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, k, v)
}

func value[T any](ctx context.Context, k key) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(k).(T)
	return v, ok
}

// WithLogger attaches logger; nil stores the no-op logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = noopLogger
	}
	return with(ctx, loggerKey, logger)
}

// Logger never returns nil.
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := value[*zap.Logger](ctx, loggerKey); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger exposes the shared no-op logger.
func NoopLogger() *zap.Logger { return noopLogger }

func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	return with(ctx, traceKey, info)
}

func Trace(ctx context.Context) (TraceInfo, bool) {
	return value[TraceInfo](ctx, traceKey)
}

// TraceID is "" outside a traced request.
func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// WithVisitor records the id resolved from the visitor cookie.
func WithVisitor(ctx context.Context, visitorID string) context.Context {
	return with(ctx, visitorKey, visitorID)
}

// Visitor returns the visitor id, or "" when the request has none.
func Visitor(ctx context.Context) string {
	id, _ := value[string](ctx, visitorKey)
	return id
}
