package transport

import "context"

// RequestIDHeader carries the caller's request id to the service.
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// WithRequestID returns a context carrying id. HTTPTransport forwards
// it in the X-Request-ID header.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestIDFrom returns the request id stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}
