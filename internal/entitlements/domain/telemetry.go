package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventName identifies a telemetry event.
type EventName string

const (
	EventPaywallShown         EventName = "paywall_shown"
	EventPurchaseSucceeded    EventName = "purchase_succeeded"
	EventPurchaseCancelled    EventName = "purchase_cancelled"
	EventPurchaseFailed       EventName = "purchase_failed"
	EventEntitlementsRestored EventName = "entitlements_restored"
)

// Event is a telemetry record about the purchase funnel.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Name       EventName         `json:"name"`
	Feature    Feature           `json:"feature,omitempty"`
	Source     string            `json:"source,omitempty"`
	Plan       Plan              `json:"plan,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewEvent creates an event stamped with a fresh id.
func NewEvent(name EventName, feature Feature, source string, occurredAt time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Name:       name,
		Feature:    feature,
		Source:     source,
		OccurredAt: occurredAt,
	}
}

// RoutingKey returns the broker routing key for the event.
func (e Event) RoutingKey() string {
	return "telemetry." + string(e.Name)
}

// Tracker records telemetry events. Implementations must not block the
// caller on a slow sink and must not panic.
type Tracker interface {
	Track(ctx context.Context, event Event)
}

// NoopTracker discards events.
type NoopTracker struct{}

func (NoopTracker) Track(context.Context, Event) {}
