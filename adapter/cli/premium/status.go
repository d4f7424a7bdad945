package premium

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show granted premium features",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		granted := app.Cache.Granted()
		if len(granted) == 0 {
			fmt.Fprintln(out, "No premium features unlocked.")
			return nil
		}

		for _, f := range domain.AllFeatures() {
			mark := "locked"
			if app.Cache.Has(f) {
				mark = "unlocked"
			}
			fmt.Fprintf(out, "%-18s %s\n", f.DisplayName(), mark)
		}

		if expireAt := app.Cache.ExpiresAt(); expireAt != nil {
			fmt.Fprintf(out, "Expires: %s\n", expireAt.Local().Format(time.RFC1123))
		} else {
			fmt.Fprintln(out, "Expires: never")
		}
		return nil
	},
}
