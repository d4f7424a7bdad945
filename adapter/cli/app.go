package cli

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/felixgeelhaar/overland/internal/entitlements/application"
	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
	"github.com/felixgeelhaar/overland/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	// Entitlements
	Cache       *application.Cache
	Billing     domain.BillingAdapter
	Verifier    *application.Verifier
	Coordinator *application.Coordinator

	// Diagnostics
	Health  *observability.HealthRegistry
	Metrics *prometheus.Registry

	// Watch settings
	ResyncSchedule string
	MetricsAddr    string
}

// NewApp creates a new CLI application with the provided components.
func NewApp(
	cache *application.Cache,
	billing domain.BillingAdapter,
	verifier *application.Verifier,
	coordinator *application.Coordinator,
) *App {
	return &App{
		Cache:          cache,
		Billing:        billing,
		Verifier:       verifier,
		Coordinator:    coordinator,
		ResyncSchedule: "@every 12h",
	}
}

// SetDiagnostics updates the health registry and metrics registry.
func (a *App) SetDiagnostics(health *observability.HealthRegistry, metrics *prometheus.Registry) {
	a.Health = health
	a.Metrics = metrics
}

// SetWatchSettings updates the re-verification schedule and metrics address.
func (a *App) SetWatchSettings(schedule, metricsAddr string) {
	if schedule != "" {
		a.ResyncSchedule = schedule
	}
	a.MetricsAddr = metricsAddr
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
