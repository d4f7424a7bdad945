package telemetry

import (
	"context"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// Multi fans an event out to every tracker in order.
type Multi []domain.Tracker

// Track forwards event to each tracker.
func (m Multi) Track(ctx context.Context, event domain.Event) {
	for _, t := range m {
		if t != nil {
			t.Track(ctx, event)
		}
	}
}

var _ domain.Tracker = Multi(nil)
