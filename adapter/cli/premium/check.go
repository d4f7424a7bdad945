package premium

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/overland/internal/entitlements/application"
	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

var checkSource string

var checkCmd = &cobra.Command{
	Use:   "check <feature>",
	Short: "Open a premium feature",
	Long: `Open a premium feature through the gate. A locked feature shows
the paywall instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		feature, err := domain.ParseFeature(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		message, err := application.Guard(app.Cache, feature, func() (string, error) {
			return fmt.Sprintf("%s is unlocked.", feature.DisplayName()), nil
		})
		if locked, ok := domain.IsLocked(err); ok {
			if app.Coordinator != nil {
				app.Coordinator.OnPaywallShown(cmd.Context(), locked, checkSource)
			}
			fmt.Fprintf(out, "%s is a premium feature.\n", locked.DisplayName())
			fmt.Fprintf(out, "Upgrade with: overland premium purchase %s\n", locked)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, message)
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkSource, "source", "cli", "screen the feature was opened from")
}
