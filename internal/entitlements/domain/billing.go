package domain

import "context"

// Products holds the platform catalog identifiers for each plan. They are
// opaque outside the billing adapter.
type Products struct {
	MonthlyID string
	YearlyID  string
}

// ProductID returns the catalog identifier for plan.
func (p Products) ProductID(plan Plan) (string, bool) {
	switch plan {
	case PlanMonthly:
		return p.MonthlyID, p.MonthlyID != ""
	case PlanYearly:
		return p.YearlyID, p.YearlyID != ""
	default:
		return "", false
	}
}

// PlanFor returns the plan sold under productID.
func (p Products) PlanFor(productID string) (Plan, bool) {
	switch {
	case productID == "":
		return "", false
	case productID == p.MonthlyID:
		return PlanMonthly, true
	case productID == p.YearlyID:
		return PlanYearly, true
	default:
		return "", false
	}
}

// BillingAdapter is the narrow port to the platform's purchase mechanism.
type BillingAdapter interface {
	// Init connects to the platform. Its failure is the only one surfaced
	// to callers; the application should continue unentitled.
	Init(ctx context.Context) error

	// Products returns the catalog identifiers for each plan.
	Products(ctx context.Context) Products

	// Purchase runs the platform purchase flow for plan.
	Purchase(ctx context.Context, plan Plan) PurchaseResult

	// Restore reports whether an active subscription exists for either plan.
	// Failures are reported as false.
	Restore(ctx context.Context) bool

	// Shutdown releases the platform connection. Best effort.
	Shutdown(ctx context.Context)
}
