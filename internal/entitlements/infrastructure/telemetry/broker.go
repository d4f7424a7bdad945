package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
	"github.com/felixgeelhaar/overland/internal/shared/infrastructure/eventbus"
)

// BrokerTracker publishes events as JSON under their routing key.
type BrokerTracker struct {
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewBrokerTracker creates a broker tracker over publisher.
func NewBrokerTracker(publisher eventbus.Publisher, logger *slog.Logger) *BrokerTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrokerTracker{publisher: publisher, logger: logger}
}

func (t *BrokerTracker) Track(ctx context.Context, event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		t.logger.WarnContext(ctx, "failed to encode telemetry event", "event", event.Name, "error", err)
		return
	}
	msg := eventbus.Message{
		ID:         event.ID.String(),
		RoutingKey: event.RoutingKey(),
		Body:       payload,
		OccurredAt: event.OccurredAt,
		Headers:    brokerHeaders(event),
	}
	if err := t.publisher.Publish(ctx, msg); err != nil {
		t.logger.WarnContext(ctx, "failed to publish telemetry event", "event", event.Name, "error", err)
	}
}

// brokerHeaders lets consumers route on feature and plan without decoding
// the body.
func brokerHeaders(event domain.Event) map[string]string {
	headers := map[string]string{"event": string(event.Name)}
	if event.Feature != "" {
		headers["feature"] = string(event.Feature)
	}
	if event.Plan != "" {
		headers["plan"] = string(event.Plan)
	}
	return headers
}

var _ domain.Tracker = (*BrokerTracker)(nil)
