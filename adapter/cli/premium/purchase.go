package premium

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

var (
	purchasePlan   string
	purchaseSource string
)

var purchaseCmd = &cobra.Command{
	Use:   "purchase <feature>",
	Short: "Buy a premium subscription",
	Long: `Start a purchase from the paywall of a premium feature.

Examples:
  overland premium purchase solar-forecast
  overland premium purchase water-plan --plan yearly`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		if app.Coordinator == nil || app.Billing == nil {
			return errors.New("purchases require a billing connection")
		}

		feature, err := domain.ParseFeature(args[0])
		if err != nil {
			return err
		}
		plan, err := domain.ParsePlan(purchasePlan)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		result := app.Coordinator.Purchase(ctx, app.Billing, app.Cache, feature, plan, purchaseSource)

		switch r := result.(type) {
		case domain.PurchaseSucceeded:
			fmt.Fprintf(out, "Purchase complete (%s). %s unlocked.\n", r.Plan, feature.DisplayName())
			if expireAt := app.Cache.ExpiresAt(); expireAt != nil {
				fmt.Fprintf(out, "Access until: %s\n", expireAt.Local().Format(time.RFC1123))
			}
			return nil
		case domain.PurchaseCancelled:
			fmt.Fprintln(out, "Purchase cancelled.")
			return nil
		case domain.PurchaseFailed:
			return fmt.Errorf("purchase failed: %s", r.Message)
		case domain.PurchaseNotReady:
			return domain.ErrBillingUnavailable
		default:
			return fmt.Errorf("unexpected purchase result %T", result)
		}
	},
}

func init() {
	purchaseCmd.Flags().StringVar(&purchasePlan, "plan", string(domain.PlanMonthly), "subscription plan (monthly or yearly)")
	purchaseCmd.Flags().StringVar(&purchaseSource, "source", "cli", "paywall the purchase started from")
}
