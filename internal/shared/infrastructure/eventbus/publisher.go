package eventbus

import (
	"context"
	"time"
)

// Message is one broker delivery.
type Message struct {
	// ID is carried as the broker message id so consumers can deduplicate.
	ID         string
	RoutingKey string
	Body       []byte
	OccurredAt time.Time
	Headers    map[string]string
}

// Publisher sends messages to a message broker.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}
