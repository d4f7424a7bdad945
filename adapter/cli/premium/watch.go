package premium

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/overland/adapter/cli"
	"github.com/felixgeelhaar/overland/pkg/observability"
)

var metricsShutdownTimeout = 5 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-verify entitlements on a schedule",
	Long: `Keep running and re-verify the subscription with the store on the
configured schedule (OVERLAND_RESYNC_SCHEDULE). Metrics and health are
served on OVERLAND_METRICS_ADDR when set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		if app.Verifier == nil {
			return errors.New("watch requires a billing connection")
		}
		ctx := cmd.Context()
		logger := cli.Logger()

		scheduler, err := newResyncScheduler(ctx, app, logger)
		if err != nil {
			return err
		}
		scheduler.Start()
		logger.InfoContext(ctx, "entitlement re-verification scheduled", "schedule", app.ResyncSchedule)

		if app.MetricsAddr != "" {
			startMetricsServer(ctx, app.MetricsAddr, newMetricsMux(app), logger)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Watching entitlements. Press Ctrl+C to stop.")
		<-ctx.Done()

		<-scheduler.Stop().Done()
		return nil
	},
}

func newResyncScheduler(ctx context.Context, app *cli.App, logger *slog.Logger) (*cron.Cron, error) {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(app.ResyncSchedule, func() {
		restored, err := app.Verifier.Run(ctx)
		if err != nil {
			return
		}
		logger.InfoContext(ctx, "entitlements re-verified", "restored", restored)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid resync schedule %q: %w", app.ResyncSchedule, err)
	}
	return scheduler, nil
}

func newMetricsMux(app *cli.App) *http.ServeMux {
	mux := http.NewServeMux()
	if app.Metrics != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(app.Metrics, promhttp.HandlerOpts{}))
	} else {
		mux.Handle("/metrics", promhttp.Handler())
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if app.Health == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		report := app.Health.Check(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if report.Status == observability.HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(report)
	})
	return mux
}

func startMetricsServer(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("failed to shut down metrics server cleanly", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped unexpectedly", "error", err)
		}
	}()
}
