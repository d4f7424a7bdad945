package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Feature identifies a gated premium capability.
type Feature string

// Feature identifiers. The set is closed and versioned together with the UI
// that requests them.
const (
	FeatureSolarForecast   Feature = "solar-forecast"
	FeatureRoadPassability Feature = "road-passability"
	FeatureWaterPlan       Feature = "water-plan"
	FeaturePropanePlan     Feature = "propane-plan"
)

var allFeatures = []Feature{
	FeatureSolarForecast,
	FeatureRoadPassability,
	FeatureWaterPlan,
	FeaturePropanePlan,
}

// AllFeatures returns every known feature. The returned slice is a copy.
func AllFeatures() []Feature {
	return slices.Clone(allFeatures)
}

// String returns the identifier.
func (f Feature) String() string {
	return string(f)
}

// IsKnown reports whether f belongs to the closed feature set.
func (f Feature) IsKnown() bool {
	return slices.Contains(allFeatures, f)
}

// DisplayName returns a human-readable name for upgrade messaging.
func (f Feature) DisplayName() string {
	switch f {
	case FeatureSolarForecast:
		return "Solar Forecast"
	case FeatureRoadPassability:
		return "Road Passability"
	case FeatureWaterPlan:
		return "Water Plan"
	case FeaturePropanePlan:
		return "Propane Plan"
	default:
		return string(f)
	}
}

// ParseFeature converts user input into a known Feature.
func ParseFeature(s string) (Feature, error) {
	f := Feature(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsKnown() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFeature, s)
	}
	return f, nil
}
