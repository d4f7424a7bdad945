package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// Config configures a StoreAdapter.
type Config struct {
	// Products maps plans to platform catalog identifiers.
	Products domain.Products

	// FailureThreshold is the number of consecutive restore query failures
	// that opens the circuit breaker.
	FailureThreshold uint32

	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Products: domain.Products{
			MonthlyID: "overland_premium_monthly",
			YearlyID:  "overland_premium_yearly",
		},
		FailureThreshold: 3,
		BreakerTimeout:   30 * time.Second,
	}
}

// StoreAdapter implements domain.BillingAdapter over a Platform.
//
// A single listener goroutine consumes platform updates. It acknowledges
// completed purchases and forwards the terminal outcome to the one caller
// blocked in Purchase.
type StoreAdapter struct {
	platform Platform
	products domain.Products
	logger   *slog.Logger
	breaker  *gobreaker.CircuitBreaker[bool]
	restores singleflight.Group

	mu           sync.Mutex
	ready        bool
	pending      chan domain.PurchaseResult
	pendingPlan  domain.Plan
	stopListener context.CancelFunc
	listenerDone chan struct{}

	ackMu sync.Mutex
	acked map[string]struct{}
}

// NewStoreAdapter creates an adapter. It does not connect until Init.
func NewStoreAdapter(platform Platform, cfg Config, logger *slog.Logger) *StoreAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaults.BreakerTimeout
	}

	a := &StoreAdapter{
		platform: platform,
		products: cfg.Products,
		logger:   logger,
		acked:    make(map[string]struct{}),
	}
	a.breaker = gobreaker.NewCircuitBreaker[bool](gobreaker.Settings{
		Name:    "billing-restore",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return a
}

// Init connects to the platform and starts the update listener. Calling it
// again after success is a no-op.
func (a *StoreAdapter) Init(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ready {
		return nil
	}
	if err := a.platform.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect billing platform: %w", err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	a.stopListener = cancel
	a.listenerDone = make(chan struct{})
	go a.listen(listenCtx, a.platform.Updates(), a.listenerDone)

	a.ready = true
	a.logger.DebugContext(ctx, "billing connected")
	return nil
}

// Ready reports whether Init succeeded and Shutdown has not run.
func (a *StoreAdapter) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

// Products returns the configured catalog identifiers.
func (a *StoreAdapter) Products(context.Context) domain.Products {
	return a.products
}

// Purchase launches the platform purchase flow for plan and waits for its
// terminal outcome. Pending purchases are not terminal; the wait ends when
// the platform reports completion or ctx is done.
func (a *StoreAdapter) Purchase(ctx context.Context, plan domain.Plan) domain.PurchaseResult {
	productID, ok := a.products.ProductID(plan)

	a.mu.Lock()
	if !a.ready {
		a.mu.Unlock()
		return domain.PurchaseNotReady{}
	}
	if !ok {
		a.mu.Unlock()
		return domain.PurchaseFailed{Message: fmt.Sprintf("no product configured for plan %q", plan)}
	}
	if a.pending != nil {
		a.mu.Unlock()
		return domain.PurchaseFailed{Message: domain.ErrPurchaseInProgress.Error()}
	}
	waiter := make(chan domain.PurchaseResult, 1)
	a.pending = waiter
	a.pendingPlan = plan
	a.mu.Unlock()

	if err := a.platform.LaunchPurchase(ctx, productID); err != nil {
		a.abandon(waiter)
		return resultForError(err)
	}

	select {
	case result := <-waiter:
		return result
	case <-ctx.Done():
		a.abandon(waiter)
		return domain.PurchaseFailed{Message: ctx.Err().Error()}
	}
}

// Restore reports whether either plan has an active purchase. Errors and an
// open breaker read as false. Concurrent calls share one platform query.
func (a *StoreAdapter) Restore(ctx context.Context) bool {
	if !a.Ready() {
		return false
	}

	v, err, shared := a.restores.Do("restore", func() (any, error) {
		return a.breaker.Execute(func() (bool, error) {
			return a.queryActive(ctx)
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			a.logger.WarnContext(ctx, "restore skipped, billing breaker open")
		} else {
			a.logger.WarnContext(ctx, "restore failed", "error", err)
		}
		return false
	}
	if shared {
		a.logger.DebugContext(ctx, "restore result shared with concurrent caller")
	}
	return v.(bool)
}

// Shutdown stops the listener and disconnects. Failures are logged.
func (a *StoreAdapter) Shutdown(ctx context.Context) {
	a.mu.Lock()
	if !a.ready {
		a.mu.Unlock()
		return
	}
	a.ready = false
	stop, done := a.stopListener, a.listenerDone
	if a.pending != nil {
		a.pending <- domain.PurchaseFailed{Message: "billing shut down"}
		a.pending = nil
	}
	a.mu.Unlock()

	stop()
	select {
	case <-done:
	case <-ctx.Done():
		a.logger.WarnContext(ctx, "billing listener did not stop before deadline")
	}

	if err := a.platform.Disconnect(ctx); err != nil {
		a.logger.WarnContext(ctx, "billing disconnect failed", "error", err)
	}
}

func (a *StoreAdapter) queryActive(ctx context.Context) (bool, error) {
	purchases, err := a.platform.QueryPurchases(ctx)
	if err != nil {
		return false, err
	}

	active := false
	for _, p := range purchases {
		if _, ok := a.products.PlanFor(p.ProductID); !ok || p.State != StatePurchased {
			continue
		}
		active = true
		if !p.Acknowledged {
			a.acknowledge(ctx, p)
		}
	}
	return active, nil
}

func (a *StoreAdapter) listen(ctx context.Context, updates <-chan Update, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			a.handleUpdate(ctx, u)
		}
	}
}

func (a *StoreAdapter) handleUpdate(ctx context.Context, u Update) {
	for _, p := range u.Purchases {
		if p.State == StatePurchased && !p.Acknowledged {
			a.acknowledge(ctx, p)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	result := a.classify(u)
	if result == nil {
		return
	}
	if a.pending == nil {
		a.logger.DebugContext(ctx, "purchase update with no waiting caller", "outcome", result.Outcome())
		return
	}
	a.pending <- result
	a.pending = nil
}

// classify maps an update to a terminal result, or nil when the purchase
// is still in flight. Callers hold a.mu.
func (a *StoreAdapter) classify(u Update) domain.PurchaseResult {
	switch u.Code {
	case CodeOK:
		pendingSeen := false
		for _, p := range u.Purchases {
			plan, ok := a.products.PlanFor(p.ProductID)
			if !ok {
				continue
			}
			switch p.State {
			case StatePurchased:
				return domain.PurchaseSucceeded{Plan: plan, TransactionID: p.OrderID}
			case StatePending:
				pendingSeen = true
			}
		}
		if pendingSeen {
			return nil
		}
		return domain.PurchaseFailed{Message: "purchase completed without a matching product"}

	case CodeUserCanceled:
		return domain.PurchaseCancelled{}

	case CodeItemAlreadyOwned:
		return domain.PurchaseSucceeded{Plan: a.pendingPlan}

	default:
		return domain.PurchaseFailed{Message: (&Error{Code: u.Code, Message: u.DebugMessage}).Error()}
	}
}

// acknowledge confirms p once per token. Failures are retried on the next
// update or restore that reports the purchase.
func (a *StoreAdapter) acknowledge(ctx context.Context, p Purchase) {
	a.ackMu.Lock()
	defer a.ackMu.Unlock()

	if _, done := a.acked[p.Token]; done || p.Token == "" {
		return
	}
	if err := a.platform.Acknowledge(ctx, p.Token); err != nil {
		a.logger.WarnContext(ctx, "failed to acknowledge purchase", "order_id", p.OrderID, "error", err)
		return
	}
	a.acked[p.Token] = struct{}{}
	a.logger.DebugContext(ctx, "purchase acknowledged", "order_id", p.OrderID)
}

func (a *StoreAdapter) abandon(waiter chan domain.PurchaseResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == waiter {
		a.pending = nil
	}
}

func resultForError(err error) domain.PurchaseResult {
	var billingErr *Error
	if errors.As(err, &billingErr) && billingErr.Code == CodeUserCanceled {
		return domain.PurchaseCancelled{}
	}
	return domain.PurchaseFailed{Message: err.Error()}
}

var _ domain.BillingAdapter = (*StoreAdapter)(nil)
