package premium

import (
	"fmt"

	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore purchases from the store",
	Long: `Query the store for an active subscription and unlock every
premium feature when one is found. Without connectivity existing
grants are kept until they expire.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		if app.Verifier == nil {
			return fmt.Errorf("restore requires a billing connection")
		}

		restored, err := app.Verifier.Run(cmd.Context())
		if err != nil {
			return err
		}
		if !restored {
			fmt.Fprintln(cmd.OutOrStdout(), "No active subscription found.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Subscription restored. All premium features unlocked.")
		return nil
	},
}
