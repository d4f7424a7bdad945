package domain

import "time"

// Clock returns the current instant. Expiration checks use it instead of
// calling time.Now directly so tests can move time.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// Now returns c(), or the wall clock if c is nil.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
