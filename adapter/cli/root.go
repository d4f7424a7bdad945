package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/overland/pkg/observability"
)

var (
	verbose bool
	logger  *slog.Logger
)

type commandStartKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "overland",
	Short: "Overland - premium entitlements for offline trip planning",
	Long: `Overland manages the premium features of the trip planner:
solar forecasts, road passability, water and propane planning.

	Entitlements are cached locally so premium features keep working
	without connectivity, and re-verified against the store when online.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := observability.WithCorrelationID(cmd.Context(), "")
		ctx = contextWithStart(ctx, time.Now())
		cmd.SetContext(ctx)
		logger.Log(ctx, commandLogLevel(), "command start",
			"command", cmd.CommandPath(),
			observability.CorrelationIDKey, observability.CorrelationIDFromContext(ctx),
		)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		startedAt, ok := startFromContext(ctx)
		if !ok {
			return
		}
		logger.Log(ctx, commandLogLevel(), "command end",
			"command", cmd.CommandPath(),
			observability.CorrelationIDKey, observability.CorrelationIDFromContext(ctx),
			"duration_ms", time.Since(startedAt).Milliseconds(),
		)
	},
}

// ExecuteContext runs the root command with ctx and prints any error to
// stderr.
func ExecuteContext(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func commandLogLevel() slog.Level {
	if verbose {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
