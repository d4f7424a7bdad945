package domain

// PurchaseOutcome names a purchase result variant.
type PurchaseOutcome string

const (
	OutcomeSuccess   PurchaseOutcome = "success"
	OutcomeCancelled PurchaseOutcome = "cancelled"
	OutcomeFailed    PurchaseOutcome = "failed"
	OutcomeNotReady  PurchaseOutcome = "not_ready"
)

// PurchaseResult is the closed set of purchase outcomes. Exactly one of
// PurchaseSucceeded, PurchaseCancelled, PurchaseFailed or PurchaseNotReady.
// Outcomes are data: a cancelled purchase is a normal branch, not an error.
type PurchaseResult interface {
	Outcome() PurchaseOutcome
	sealed()
}

// PurchaseSucceeded reports a completed purchase.
type PurchaseSucceeded struct {
	Plan          Plan
	TransactionID string
}

// PurchaseCancelled reports that the user dismissed the purchase flow.
type PurchaseCancelled struct{}

// PurchaseFailed reports a platform failure with a human-readable message.
type PurchaseFailed struct {
	Message string
}

// PurchaseNotReady reports that billing was never initialized.
type PurchaseNotReady struct{}

func (PurchaseSucceeded) Outcome() PurchaseOutcome { return OutcomeSuccess }
func (PurchaseCancelled) Outcome() PurchaseOutcome { return OutcomeCancelled }
func (PurchaseFailed) Outcome() PurchaseOutcome    { return OutcomeFailed }
func (PurchaseNotReady) Outcome() PurchaseOutcome  { return OutcomeNotReady }

func (PurchaseSucceeded) sealed() {}
func (PurchaseCancelled) sealed() {}
func (PurchaseFailed) sealed()    {}
func (PurchaseNotReady) sealed()  {}
