package application

import "github.com/felixgeelhaar/overland/internal/entitlements/domain"

// Guard runs fn only when feature is unlocked. Otherwise it returns the
// zero value and a *domain.LockedError without calling fn.
func Guard[T any](checker Checker, feature domain.Feature, fn func() (T, error)) (T, error) {
	if err := Require(checker, feature); err != nil {
		var zero T
		return zero, err
	}
	return fn()
}

// Do is Guard for work without a result.
func Do(checker Checker, feature domain.Feature, fn func() error) error {
	if err := Require(checker, feature); err != nil {
		return err
	}
	return fn()
}

// Require returns a *domain.LockedError when feature is not unlocked.
func Require(checker Checker, feature domain.Feature) error {
	if checker == nil || !checker.Has(feature) {
		return &domain.LockedError{Feature: feature}
	}
	return nil
}
