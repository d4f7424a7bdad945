package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// PrometheusTracker counts funnel events.
type PrometheusTracker struct {
	events *prometheus.CounterVec
}

// NewPrometheusTracker registers the funnel counters with reg.
func NewPrometheusTracker(reg prometheus.Registerer) (*PrometheusTracker, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "overland",
		Subsystem: "entitlements",
		Name:      "funnel_events_total",
		Help:      "Purchase funnel events by event name, feature and plan.",
	}, []string{"event", "feature", "plan"})

	if err := reg.Register(events); err != nil {
		return nil, err
	}
	return &PrometheusTracker{events: events}, nil
}

func (t *PrometheusTracker) Track(_ context.Context, event domain.Event) {
	t.events.WithLabelValues(string(event.Name), string(event.Feature), string(event.Plan)).Inc()
}

var _ domain.Tracker = (*PrometheusTracker)(nil)
