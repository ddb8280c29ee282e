package domain

import "context"

type contextKey int

const (
	preparerKey contextKey = iota
	requestIDKey
)

// WithPreparer attaches the id of the preparer making the request.
func WithPreparer(ctx context.Context, preparerID string) context.Context {
	return context.WithValue(ctx, preparerKey, preparerID)
}

// PreparerFromContext returns the preparer attached by WithPreparer.
func PreparerFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(preparerKey).(string)
	return id, ok && id != ""
}

// WithRequestID attaches a request id used to correlate audit rows.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request id attached by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
