package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// Coordinator runs the purchase use-cases invoked from the UI.
type Coordinator struct {
	tracker domain.Tracker
	clock   domain.Clock
	logger  *slog.Logger
}

// NewCoordinator creates a coordinator. A nil tracker discards events.
func NewCoordinator(tracker domain.Tracker, clock domain.Clock, logger *slog.Logger) *Coordinator {
	if tracker == nil {
		tracker = domain.NoopTracker{}
	}
	if clock == nil {
		clock = domain.SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{tracker: tracker, clock: clock, logger: logger}
}

// OnPaywallShown records that the paywall was presented for feature.
// It never blocks on the telemetry sink and never panics.
func (c *Coordinator) OnPaywallShown(ctx context.Context, feature domain.Feature, source string) {
	safeTrack(ctx, c.tracker, domain.NewEvent(domain.EventPaywallShown, feature, source, c.clock.Now()), c.logger)
}

// OnPurchaseSuccess records the purchase and grants every feature until the
// plan's expiration from clock's now. It must only be called after the
// billing adapter reported success. Returns the granted expiration.
func (c *Coordinator) OnPurchaseSuccess(ctx context.Context, grantor Grantor, feature domain.Feature, plan domain.Plan, source string, clock domain.Clock) time.Time {
	now := clock.Now()
	expireAt := plan.ExpirationFrom(now)

	event := domain.NewEvent(domain.EventPurchaseSucceeded, feature, source, now)
	event.Plan = plan
	safeTrack(ctx, c.tracker, event, c.logger)

	grantor.Grant(ctx, domain.AllFeatures(), &expireAt)
	c.logger.InfoContext(ctx, "purchase granted",
		"plan", plan,
		"feature", feature,
		"expire_at", expireAt.UTC(),
	)
	return expireAt
}

// Purchase runs the platform purchase for plan and grants on success only.
// The adapter's result is returned unchanged.
func (c *Coordinator) Purchase(ctx context.Context, adapter domain.BillingAdapter, grantor Grantor, feature domain.Feature, plan domain.Plan, source string) domain.PurchaseResult {
	result := adapter.Purchase(ctx, plan)

	switch r := result.(type) {
	case domain.PurchaseSucceeded:
		granted := r.Plan
		if !granted.IsValid() {
			granted = plan
		}
		c.OnPurchaseSuccess(ctx, grantor, feature, granted, source, c.clock)

	case domain.PurchaseCancelled:
		c.logger.DebugContext(ctx, "purchase cancelled by user", "plan", plan, "feature", feature)
		c.track(ctx, domain.EventPurchaseCancelled, feature, plan, source, nil)

	case domain.PurchaseFailed:
		c.logger.WarnContext(ctx, "purchase failed", "plan", plan, "feature", feature, "message", r.Message)
		c.track(ctx, domain.EventPurchaseFailed, feature, plan, source, map[string]string{"message": r.Message})

	case domain.PurchaseNotReady:
		c.logger.WarnContext(ctx, "purchase attempted before billing was ready", "plan", plan)
		c.track(ctx, domain.EventPurchaseFailed, feature, plan, source, map[string]string{"reason": string(domain.OutcomeNotReady)})

	default:
		c.logger.ErrorContext(ctx, "unexpected purchase result", "type", fmt.Sprintf("%T", result))
	}

	return result
}

func (c *Coordinator) track(ctx context.Context, name domain.EventName, feature domain.Feature, plan domain.Plan, source string, props map[string]string) {
	event := domain.NewEvent(name, feature, source, c.clock.Now())
	event.Plan = plan
	event.Properties = props
	safeTrack(ctx, c.tracker, event, c.logger)
}

// safeTrack hands event to tracker and absorbs any panic from it.
func safeTrack(ctx context.Context, tracker domain.Tracker, event domain.Event, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.WarnContext(ctx, "telemetry tracker panicked", "event", event.Name, "panic", r)
		}
	}()
	tracker.Track(ctx, event)
}
