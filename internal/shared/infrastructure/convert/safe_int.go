// Package convert provides safe integer conversions for driver settings.
package convert

import (
	"fmt"
	"math"
)

// IntToInt32 converts v to int32, returning an error on overflow.
func IntToInt32(v int) (int32, error) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int32", v)
	}
	return int32(v), nil
}

// ClampInt32 converts v to int32, clamping to the int32 range.
func ClampInt32(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
