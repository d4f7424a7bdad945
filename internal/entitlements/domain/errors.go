package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFeatureLocked indicates the requested feature is not currently entitled.
	ErrFeatureLocked = errors.New("feature locked")

	// ErrBillingUnavailable indicates the platform billing connection could not be established.
	ErrBillingUnavailable = errors.New("billing unavailable")

	// ErrUnknownFeature indicates a feature identifier outside the closed set.
	ErrUnknownFeature = errors.New("unknown feature")

	// ErrUnknownPlan indicates a plan other than monthly or yearly.
	ErrUnknownPlan = errors.New("unknown plan")

	// ErrPurchaseInProgress indicates a second purchase was started while one is pending.
	ErrPurchaseInProgress = errors.New("purchase already in progress")

	// ErrUnsupportedDriver indicates an unknown durable store driver.
	ErrUnsupportedDriver = errors.New("unsupported store driver")
)

// LockedError is returned by the premium gate when a feature is not entitled.
// Callers translate it into a paywall prompt.
type LockedError struct {
	Feature Feature
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("feature locked: %s", e.Feature)
}

// Is makes errors.Is(err, ErrFeatureLocked) match any LockedError.
func (e *LockedError) Is(target error) bool {
	return target == ErrFeatureLocked
}

// IsLocked reports whether err carries a locked feature and returns it.
func IsLocked(err error) (Feature, bool) {
	var locked *LockedError
	if errors.As(err, &locked) {
		return locked.Feature, true
	}
	return "", false
}
