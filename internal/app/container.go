package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/felixgeelhaar/overland/internal/entitlements/application"
	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
	"github.com/felixgeelhaar/overland/internal/entitlements/infrastructure/billing"
	"github.com/felixgeelhaar/overland/internal/entitlements/infrastructure/persistence"
	"github.com/felixgeelhaar/overland/internal/entitlements/infrastructure/telemetry"
	"github.com/felixgeelhaar/overland/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/overland/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/overland/pkg/config"
	"github.com/felixgeelhaar/overland/pkg/observability"
)

// Container holds all application dependencies. It is the only owner of
// the billing connection and the entitlement cache.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Entitlements
	Backend     domain.Backend
	Store       *persistence.DurableStore
	Cache       *application.Cache
	Billing     *billing.StoreAdapter
	Verifier    *application.Verifier
	Coordinator *application.Coordinator

	// Telemetry
	Tracker   *telemetry.AsyncTracker
	Publisher eventbus.Publisher
	Metrics   *prometheus.Registry
	Health    *observability.HealthRegistry

	closeBackend func() error
}

type options struct {
	platform billing.Platform
	clock    domain.Clock
}

// Option customizes container wiring.
type Option func(*options)

// WithPlatform replaces the sandbox billing platform.
func WithPlatform(p billing.Platform) Option {
	return func(o *options) {
		o.platform = p
	}
}

// WithClock replaces the wall clock for expiration and grants.
func WithClock(clock domain.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// NewContainer creates and wires all dependencies. A durable store that
// cannot be opened falls back to process memory; a broker that cannot be
// reached falls back to no broker.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{clock: domain.SystemClock}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	// Durable store
	backend, closeBackend, err := persistence.OpenBackend(ctx, persistence.BackendConfig{
		Config: database.Config{
			Driver:   database.Driver(cfg.StoreDriver),
			URL:      cfg.StoreURL(),
			MaxConns: cfg.MaxConns,
		},
		Key: cfg.StoreKey,
	}, logger)
	if err != nil {
		logger.Warn("entitlement store unavailable, using in-memory store", "error", err)
		backend, closeBackend = persistence.NewMemoryBackend(), func() error { return nil }
	}
	c.Backend = backend
	c.closeBackend = closeBackend
	c.Store = persistence.NewDurableStore(backend, logger)
	c.Cache = application.NewCache(c.Store, application.WithClock(o.clock), application.WithCacheLogger(logger))

	// Telemetry
	c.Metrics = prometheus.NewRegistry()
	c.Metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promTracker, err := telemetry.NewPrometheusTracker(c.Metrics)
	if err != nil {
		_ = closeBackend()
		return nil, fmt.Errorf("failed to register telemetry metrics: %w", err)
	}
	sinks := telemetry.Multi{telemetry.NewLogTracker(logger), promTracker}

	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, "", logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, telemetry will not be published", "error", err)
		} else {
			c.Publisher = publisher
			sinks = append(sinks, telemetry.NewBrokerTracker(publisher, logger))
		}
	}
	c.Tracker = telemetry.NewAsyncTracker(sinks, cfg.TelemetryBuffer, logger)

	// Billing
	products := domain.Products{MonthlyID: cfg.MonthlyProductID, YearlyID: cfg.YearlyProductID}
	platform := o.platform
	if platform == nil {
		platform, err = newSandboxPlatform(cfg, products)
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
	}
	c.Billing = billing.NewStoreAdapter(platform, billing.Config{
		Products:         products,
		FailureThreshold: cfg.BreakerFailureThreshold,
		BreakerTimeout:   cfg.BreakerTimeout,
	}, logger)

	c.Verifier = application.NewVerifier(c.Billing, c.Cache, c.Tracker, o.clock, logger)
	c.Coordinator = application.NewCoordinator(c.Tracker, o.clock, logger)

	// Health
	c.Health = observability.NewHealthRegistry()
	c.Health.Register("store", observability.PingChecker("store", observability.HealthStatusDegraded, func(ctx context.Context) error {
		_, err := backend.Load(ctx)
		return err
	}))
	c.Health.Register("billing", observability.PingChecker("billing", observability.HealthStatusDegraded, func(context.Context) error {
		if !c.Billing.Ready() {
			return domain.ErrBillingUnavailable
		}
		return nil
	}))

	return c, nil
}

// Bootstrap hydrates the cache and then restores purchases. A billing
// failure is logged and the application continues unentitled; the returned
// bool reports whether an active subscription was restored.
func (c *Container) Bootstrap(ctx context.Context) bool {
	c.Cache.Hydrate(ctx)

	restored, err := c.Verifier.Run(ctx)
	if err != nil {
		c.Logger.WarnContext(ctx, "entitlement verification skipped", "error", err)
		return false
	}
	return restored
}

// Close releases billing, telemetry and storage resources.
func (c *Container) Close(ctx context.Context) {
	if c.Billing != nil {
		c.Billing.Shutdown(ctx)
	}

	if c.Tracker != nil {
		if err := c.Tracker.Close(ctx); err != nil {
			c.Logger.Warn("telemetry not fully flushed", "error", err, "dropped", c.Tracker.Dropped())
		}
	}

	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.closeBackend != nil {
		if err := c.closeBackend(); err != nil {
			c.Logger.Warn("error closing entitlement store", "error", err)
		}
	}
}

func newSandboxPlatform(cfg *config.Config, products domain.Products) (*billing.SandboxPlatform, error) {
	outcome, err := billing.ParseSandboxOutcome(cfg.SandboxOutcome)
	if err != nil {
		return nil, err
	}
	opts := []billing.SandboxOption{billing.WithOutcome(outcome)}

	if cfg.SandboxOwnedPlan != "" {
		plan, err := domain.ParsePlan(cfg.SandboxOwnedPlan)
		if err != nil {
			return nil, err
		}
		if productID, ok := products.ProductID(plan); ok {
			opts = append(opts, billing.WithOwnedProduct(productID))
		}
	}
	return billing.NewSandboxPlatform(opts...), nil
}
