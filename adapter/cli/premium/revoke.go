package premium

import (
	"fmt"

	"github.com/spf13/cobra"
)

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Remove every local premium grant",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		app.Cache.RevokeAll(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "All premium features locked.")
		return nil
	},
}
