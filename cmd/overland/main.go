package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/overland/adapter/cli"
	"github.com/felixgeelhaar/overland/adapter/cli/premium"
	"github.com/felixgeelhaar/overland/internal/app"
	"github.com/felixgeelhaar/overland/pkg/config"
	"github.com/felixgeelhaar/overland/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, cli.Version))
	slog.SetDefault(logger)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		container.Close(closeCtx)
	}()

	// Hydrate from the durable store, then re-verify with the store
	container.Bootstrap(ctx)

	cliApp := cli.NewApp(container.Cache, container.Billing, container.Verifier, container.Coordinator)
	cliApp.SetDiagnostics(container.Health, container.Metrics)
	cliApp.SetWatchSettings(cfg.ResyncSchedule, cfg.MetricsAddr)
	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(premium.Cmd)

	if err := cli.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
