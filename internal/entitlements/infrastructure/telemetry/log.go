package telemetry

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// LogTracker writes each event as a structured log line.
type LogTracker struct {
	logger *slog.Logger
}

// NewLogTracker creates a log tracker.
func NewLogTracker(logger *slog.Logger) *LogTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTracker{logger: logger.With("component", "telemetry")}
}

func (t *LogTracker) Track(ctx context.Context, event domain.Event) {
	attrs := []any{
		"event", event.Name,
		"event_id", event.ID,
	}
	if event.Feature != "" {
		attrs = append(attrs, "feature", event.Feature)
	}
	if event.Source != "" {
		attrs = append(attrs, "source", event.Source)
	}
	if event.Plan != "" {
		attrs = append(attrs, "plan", event.Plan)
	}
	for k, v := range event.Properties {
		attrs = append(attrs, k, v)
	}
	t.logger.InfoContext(ctx, "telemetry event", attrs...)
}

var _ domain.Tracker = (*LogTracker)(nil)
