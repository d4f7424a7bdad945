package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

const day = 24 * time.Hour

func TestCoordinator_OnPurchaseSuccess_Expiration(t *testing.T) {
	tests := []struct {
		plan     domain.Plan
		min, max time.Duration
	}{
		{domain.PlanMonthly, 31 * day, 33 * day},
		{domain.PlanYearly, 369 * day, 371 * day},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			ctx := context.Background()
			clock := newManualClock(testEpoch)
			cache := newTestCache(&fakeStore{}, clock)
			tracker := &recordingTracker{}

			expireAt := NewCoordinator(tracker, nil, nil).
				OnPurchaseSuccess(ctx, cache, domain.FeatureSolarForecast, tt.plan, "paywall", clock.Clock())

			window := expireAt.Sub(testEpoch)
			assert.GreaterOrEqual(t, window, tt.min)
			assert.LessOrEqual(t, window, tt.max)

			require.NotNil(t, cache.ExpiresAt())
			assert.Equal(t, expireAt, *cache.ExpiresAt())
			assert.Equal(t, domain.AllFeatures(), cache.Granted())

			require.Len(t, tracker.events, 1)
			assert.Equal(t, domain.EventPurchaseSucceeded, tracker.events[0].Name)
			assert.Equal(t, tt.plan, tracker.events[0].Plan)
		})
	}
}

func TestCoordinator_Purchase(t *testing.T) {
	ctx := context.Background()

	t.Run("success grants all features", func(t *testing.T) {
		clock := newManualClock(testEpoch)
		cache := newTestCache(&fakeStore{}, clock)
		adapter := new(MockBillingAdapter)
		adapter.On("Purchase", mock.Anything, domain.PlanMonthly).
			Return(domain.PurchaseSucceeded{Plan: domain.PlanMonthly, TransactionID: "GPA.1"})

		result := NewCoordinator(nil, clock.Clock(), nil).
			Purchase(ctx, adapter, cache, domain.FeatureWaterPlan, domain.PlanMonthly, "paywall")

		assert.Equal(t, domain.OutcomeSuccess, result.Outcome())
		for _, f := range domain.AllFeatures() {
			assert.True(t, cache.Has(f))
		}
		assert.Equal(t, testEpoch.Add(32*day), *cache.ExpiresAt())
	})

	t.Run("success without plan uses requested plan", func(t *testing.T) {
		clock := newManualClock(testEpoch)
		cache := newTestCache(&fakeStore{}, clock)
		adapter := new(MockBillingAdapter)
		adapter.On("Purchase", mock.Anything, domain.PlanYearly).Return(domain.PurchaseSucceeded{})

		NewCoordinator(nil, clock.Clock(), nil).
			Purchase(ctx, adapter, cache, domain.FeatureWaterPlan, domain.PlanYearly, "paywall")

		assert.Equal(t, testEpoch.Add(370*day), *cache.ExpiresAt())
	})

	nonSuccess := []struct {
		name   string
		result domain.PurchaseResult
		event  domain.EventName
	}{
		{"cancelled", domain.PurchaseCancelled{}, domain.EventPurchaseCancelled},
		{"failed", domain.PurchaseFailed{Message: "card declined"}, domain.EventPurchaseFailed},
		{"not ready", domain.PurchaseNotReady{}, domain.EventPurchaseFailed},
	}
	for _, tt := range nonSuccess {
		t.Run(tt.name+" never grants", func(t *testing.T) {
			adapter := new(MockBillingAdapter)
			adapter.On("Purchase", mock.Anything, domain.PlanYearly).Return(tt.result)
			grantor := new(MockGrantor)
			tracker := &recordingTracker{}

			result := NewCoordinator(tracker, nil, nil).
				Purchase(ctx, adapter, grantor, domain.FeatureSolarForecast, domain.PlanYearly, "paywall")

			assert.Equal(t, tt.result, result)
			grantor.AssertNotCalled(t, "Grant", mock.Anything, mock.Anything, mock.Anything)
			assert.Equal(t, []domain.EventName{tt.event}, tracker.names())
		})
	}

	t.Run("cancel leaves existing grants unchanged", func(t *testing.T) {
		clock := newManualClock(testEpoch)
		cache := newTestCache(&fakeStore{}, clock)
		expireAt := testEpoch.Add(day)
		cache.Grant(ctx, []domain.Feature{domain.FeatureRoadPassability}, &expireAt)
		before := cache.Granted()

		adapter := new(MockBillingAdapter)
		adapter.On("Purchase", mock.Anything, domain.PlanYearly).Return(domain.PurchaseCancelled{})

		NewCoordinator(nil, clock.Clock(), nil).
			Purchase(ctx, adapter, cache, domain.FeatureSolarForecast, domain.PlanYearly, "paywall")

		assert.Equal(t, before, cache.Granted())
		assert.Equal(t, expireAt, *cache.ExpiresAt())
		assert.False(t, cache.Has(domain.FeatureSolarForecast))
	})
}

func TestCoordinator_OnPaywallShown(t *testing.T) {
	ctx := context.Background()

	t.Run("records event", func(t *testing.T) {
		tracker := &recordingTracker{}
		NewCoordinator(tracker, newManualClock(testEpoch).Clock(), nil).
			OnPaywallShown(ctx, domain.FeatureRoadPassability, "route-screen")

		require.Len(t, tracker.events, 1)
		event := tracker.events[0]
		assert.Equal(t, domain.EventPaywallShown, event.Name)
		assert.Equal(t, domain.FeatureRoadPassability, event.Feature)
		assert.Equal(t, "route-screen", event.Source)
		assert.Equal(t, testEpoch, event.OccurredAt)
	})

	t.Run("tracker panic is absorbed", func(t *testing.T) {
		assert.NotPanics(t, func() {
			NewCoordinator(panickingTracker{}, nil, nil).OnPaywallShown(ctx, domain.FeatureWaterPlan, "x")
		})
	})
}
