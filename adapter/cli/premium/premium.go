package premium

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/overland/adapter/cli"
)

// Cmd is the premium command group.
var Cmd = &cobra.Command{
	Use:   "premium",
	Short: "Manage premium features",
	Long:  `Inspect, purchase, restore and revoke premium feature entitlements.`,
}

func init() {
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(restoreCmd)
	Cmd.AddCommand(purchaseCmd)
	Cmd.AddCommand(revokeCmd)
	Cmd.AddCommand(checkCmd)
	Cmd.AddCommand(watchCmd)
}

func requireApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.Cache == nil {
		return nil, cli.ErrAppNotInitialized
	}
	return app, nil
}
