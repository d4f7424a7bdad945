package observability

import (
	"context"

	"github.com/google/uuid"
)

// CorrelationIDKey is the log attribute carrying the correlation ID.
const CorrelationIDKey = "correlation_id"

type correlationIDKey struct{}

// WithCorrelationID stores id in ctx. An empty id keeps an existing one or
// generates a new UUID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if id == "" {
		if existing := CorrelationIDFromContext(ctx); existing != "" {
			return ctx
		}
		id = uuid.NewString()
	}
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationIDFromContext returns the correlation ID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}
