package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/overland/pkg/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check store and billing health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Health == nil {
			return ErrAppNotInitialized
		}

		report := app.Health.Check(cmd.Context())
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "overall: %s\n", report.Status)

		names := make([]string, 0, len(report.Checks))
		for name := range report.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			result := report.Checks[name]
			line := fmt.Sprintf("  %-8s %s", name, result.Status)
			if result.Status != observability.HealthStatusHealthy && result.Message != "" {
				line += " (" + result.Message + ")"
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
