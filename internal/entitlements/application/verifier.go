package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// Verifier restores existing subscriptions at startup and grants every
// feature when one is active. No active subscription leaves the current
// grants untouched, so an offline user keeps an unexpired entitlement.
type Verifier struct {
	adapter domain.BillingAdapter
	grantor Grantor
	tracker domain.Tracker
	clock   domain.Clock
	logger  *slog.Logger
}

// NewVerifier creates a verifier. A nil tracker discards events.
func NewVerifier(adapter domain.BillingAdapter, grantor Grantor, tracker domain.Tracker, clock domain.Clock, logger *slog.Logger) *Verifier {
	if tracker == nil {
		tracker = domain.NoopTracker{}
	}
	if clock == nil {
		clock = domain.SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		adapter: adapter,
		grantor: grantor,
		tracker: tracker,
		clock:   clock,
		logger:  logger,
	}
}

// Run initializes billing and restores purchases. It reports whether an
// active subscription was found. Only an Init failure is returned, wrapped
// in domain.ErrBillingUnavailable; callers should log it and continue
// unentitled.
func (v *Verifier) Run(ctx context.Context) (bool, error) {
	if err := v.adapter.Init(ctx); err != nil {
		v.logger.WarnContext(ctx, "billing unavailable, continuing unentitled", "error", err)
		return false, fmt.Errorf("%w: %w", domain.ErrBillingUnavailable, err)
	}

	if !v.adapter.Restore(ctx) {
		v.logger.DebugContext(ctx, "no active subscription found")
		return false, nil
	}

	now := v.clock.Now()
	expireAt := now.Add(domain.RestoreGrantDuration)
	v.grantor.Grant(ctx, domain.AllFeatures(), &expireAt)

	safeTrack(ctx, v.tracker, domain.NewEvent(domain.EventEntitlementsRestored, "", "restore", now), v.logger)
	v.logger.InfoContext(ctx, "entitlements restored", "expire_at", expireAt.UTC())
	return true, nil
}
