package tracelib

import "context"

type traceIDContextKey struct{}

// WithTraceID attaches an identifier of the trace request to the
// context. It is reported to Logger.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDContextKey{}, id)
}

// TraceIDFromContext returns an identifier set by WithTraceID or empty
// string.
func TraceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceIDContextKey{}).(string)

	return id
}
