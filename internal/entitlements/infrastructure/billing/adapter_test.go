package billing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

var testProducts = domain.Products{MonthlyID: "premium_monthly", YearlyID: "premium_yearly"}

func newTestAdapter(t *testing.T, platform Platform) *StoreAdapter {
	t.Helper()
	a := NewStoreAdapter(platform, Config{Products: testProducts, FailureThreshold: 2, BreakerTimeout: time.Minute}, nil)
	t.Cleanup(func() { a.Shutdown(context.Background()) })
	return a
}

func TestStoreAdapter_NotReadyBeforeInit(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t, NewSandboxPlatform())

	assert.Equal(t, domain.PurchaseNotReady{}, a.Purchase(ctx, domain.PlanMonthly))
	assert.False(t, a.Restore(ctx))
}

func TestStoreAdapter_InitFailure(t *testing.T) {
	a := newTestAdapter(t, NewSandboxPlatform(WithConnectError(errors.New("service missing"))))

	err := a.Init(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service missing")
	assert.Equal(t, domain.PurchaseNotReady{}, a.Purchase(context.Background(), domain.PlanYearly))
}

func TestStoreAdapter_InitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t, NewSandboxPlatform())

	require.NoError(t, a.Init(ctx))
	require.NoError(t, a.Init(ctx))
	assert.Equal(t, testProducts, a.Products(ctx))
}

func TestStoreAdapter_PurchaseOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		outcome SandboxOutcome
		plan    domain.Plan
		check   func(t *testing.T, result domain.PurchaseResult)
	}{
		{
			name:    "approve",
			outcome: SandboxApprove,
			plan:    domain.PlanMonthly,
			check: func(t *testing.T, result domain.PurchaseResult) {
				succeeded, ok := result.(domain.PurchaseSucceeded)
				require.True(t, ok, "got %T", result)
				assert.Equal(t, domain.PlanMonthly, succeeded.Plan)
				assert.True(t, strings.HasPrefix(succeeded.TransactionID, "SANDBOX."))
			},
		},
		{
			name:    "cancel",
			outcome: SandboxCancel,
			plan:    domain.PlanYearly,
			check: func(t *testing.T, result domain.PurchaseResult) {
				assert.Equal(t, domain.PurchaseCancelled{}, result)
			},
		},
		{
			name:    "fail",
			outcome: SandboxFail,
			plan:    domain.PlanYearly,
			check: func(t *testing.T, result domain.PurchaseResult) {
				failed, ok := result.(domain.PurchaseFailed)
				require.True(t, ok, "got %T", result)
				assert.Contains(t, failed.Message, "sandbox declined")
			},
		},
		{
			name:    "already owned",
			outcome: SandboxOwned,
			plan:    domain.PlanYearly,
			check: func(t *testing.T, result domain.PurchaseResult) {
				assert.Equal(t, domain.PurchaseSucceeded{Plan: domain.PlanYearly}, result)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			a := newTestAdapter(t, NewSandboxPlatform(WithOutcome(tt.outcome)))
			require.NoError(t, a.Init(ctx))

			tt.check(t, a.Purchase(ctx, tt.plan))
		})
	}
}

func TestStoreAdapter_AcknowledgesApprovedPurchase(t *testing.T) {
	ctx := context.Background()
	platform := NewSandboxPlatform()
	a := newTestAdapter(t, platform)
	require.NoError(t, a.Init(ctx))

	result := a.Purchase(ctx, domain.PlanYearly)
	require.Equal(t, domain.OutcomeSuccess, result.Outcome())

	owned := platform.Owned()
	require.Len(t, owned, 1)
	assert.True(t, owned[0].Acknowledged)
	assert.Equal(t, []string{owned[0].Token}, platform.Acknowledged())

	platform.Emit(Update{Code: CodeOK, Purchases: []Purchase{{Token: owned[0].Token, ProductID: owned[0].ProductID, State: StatePurchased}}})
	assert.True(t, a.Restore(ctx))

	assert.Never(t, func() bool {
		return len(platform.Acknowledged()) > 1
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestStoreAdapter_PendingWaitsForContext(t *testing.T) {
	platform := NewSandboxPlatform(WithOutcome(SandboxPending))
	a := newTestAdapter(t, platform)
	require.NoError(t, a.Init(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result := a.Purchase(ctx, domain.PlanMonthly)
	failed, ok := result.(domain.PurchaseFailed)
	require.True(t, ok, "got %T", result)
	assert.Contains(t, failed.Message, "deadline exceeded")

	assert.NotPanics(t, func() {
		platform.Emit(Update{Code: CodeUserCanceled})
	})
}

func TestStoreAdapter_PendingThenCompleted(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	platform := NewSandboxPlatform(WithOutcome(SandboxPending))
	a := newTestAdapter(t, platform)
	require.NoError(t, a.Init(ctx))

	results := make(chan domain.PurchaseResult, 1)
	go func() { results <- a.Purchase(ctx, domain.PlanYearly) }()

	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.pending != nil
	}, time.Second, 5*time.Millisecond)

	platform.Emit(Update{Code: CodeOK, Purchases: []Purchase{{
		OrderID:   "GPA.42",
		ProductID: testProducts.YearlyID,
		Token:     "tok-42",
		State:     StatePurchased,
	}}})

	select {
	case result := <-results:
		assert.Equal(t, domain.PurchaseSucceeded{Plan: domain.PlanYearly, TransactionID: "GPA.42"}, result)
	case <-ctx.Done():
		t.Fatal("purchase did not complete")
	}
	assert.Equal(t, []string{"tok-42"}, platform.Acknowledged())
}

func TestStoreAdapter_RejectsConcurrentPurchase(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := newTestAdapter(t, NewSandboxPlatform(WithOutcome(SandboxPending)))
	require.NoError(t, a.Init(ctx))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Purchase(ctx, domain.PlanMonthly)
	}()

	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.pending != nil
	}, time.Second, 5*time.Millisecond)

	result := a.Purchase(ctx, domain.PlanYearly)
	assert.Equal(t, domain.PurchaseFailed{Message: domain.ErrPurchaseInProgress.Error()}, result)

	cancel()
	wg.Wait()
}

func TestStoreAdapter_UnconfiguredProduct(t *testing.T) {
	ctx := context.Background()
	a := NewStoreAdapter(NewSandboxPlatform(), Config{Products: domain.Products{MonthlyID: "m"}}, nil)
	require.NoError(t, a.Init(ctx))
	defer a.Shutdown(ctx)

	result := a.Purchase(ctx, domain.PlanYearly)
	assert.Equal(t, domain.OutcomeFailed, result.Outcome())
}

func TestStoreAdapter_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("active subscription", func(t *testing.T) {
		platform := NewSandboxPlatform(WithOwnedProduct(testProducts.MonthlyID))
		a := newTestAdapter(t, platform)
		require.NoError(t, a.Init(ctx))

		assert.True(t, a.Restore(ctx))
		assert.Len(t, platform.Acknowledged(), 1)
	})

	t.Run("nothing owned", func(t *testing.T) {
		a := newTestAdapter(t, NewSandboxPlatform())
		require.NoError(t, a.Init(ctx))
		assert.False(t, a.Restore(ctx))
	})

	t.Run("foreign product ignored", func(t *testing.T) {
		a := newTestAdapter(t, NewSandboxPlatform(WithOwnedProduct("some_other_app_sku")))
		require.NoError(t, a.Init(ctx))
		assert.False(t, a.Restore(ctx))
	})

	t.Run("query error reads as false", func(t *testing.T) {
		a := newTestAdapter(t, NewSandboxPlatform(WithQueryError(errors.New("timeout"))))
		require.NoError(t, a.Init(ctx))
		assert.False(t, a.Restore(ctx))
	})
}

type countingPlatform struct {
	*SandboxPlatform
	queries atomic.Int32
}

func (c *countingPlatform) QueryPurchases(ctx context.Context) ([]Purchase, error) {
	c.queries.Add(1)
	return c.SandboxPlatform.QueryPurchases(ctx)
}

func TestStoreAdapter_RestoreBreakerOpens(t *testing.T) {
	ctx := context.Background()
	platform := &countingPlatform{SandboxPlatform: NewSandboxPlatform(WithQueryError(errors.New("unavailable")))}
	a := newTestAdapter(t, platform)
	require.NoError(t, a.Init(ctx))

	for i := 0; i < 5; i++ {
		assert.False(t, a.Restore(ctx))
	}
	assert.Equal(t, int32(2), platform.queries.Load())
}

func TestStoreAdapter_Shutdown(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t, NewSandboxPlatform())
	require.NoError(t, a.Init(ctx))

	a.Shutdown(ctx)
	a.Shutdown(ctx)

	assert.Equal(t, domain.PurchaseNotReady{}, a.Purchase(ctx, domain.PlanMonthly))
	assert.False(t, a.Restore(ctx))
}
