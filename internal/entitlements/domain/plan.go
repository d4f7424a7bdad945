package domain

import (
	"fmt"
	"strings"
	"time"
)

// Plan is a purchasable subscription term.
type Plan string

const (
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

const day = 24 * time.Hour

// Grant windows. Each is longer than the nominal billing period so that
// renewal-processing latency does not lock a paying user out.
const (
	MonthlyGrantDuration = 32 * day
	YearlyGrantDuration  = 370 * day

	// RestoreGrantDuration applies when an active subscription is found on
	// restore and the plan term is not known locally.
	RestoreGrantDuration = 370 * day
)

// GrantDuration returns the entitlement window granted for a purchase of p.
func (p Plan) GrantDuration() time.Duration {
	switch p {
	case PlanMonthly:
		return MonthlyGrantDuration
	case PlanYearly:
		return YearlyGrantDuration
	default:
		return 0
	}
}

// ExpirationFrom returns the absolute expiration of a purchase made at now.
func (p Plan) ExpirationFrom(now time.Time) time.Time {
	return now.Add(p.GrantDuration())
}

// IsValid reports whether p is a known plan.
func (p Plan) IsValid() bool {
	return p == PlanMonthly || p == PlanYearly
}

func (p Plan) String() string {
	return string(p)
}

// ParsePlan converts user input into a Plan.
func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlan, s)
	}
	return p, nil
}
