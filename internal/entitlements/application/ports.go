package application

import (
	"context"
	"time"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// Checker answers whether a feature is unlocked right now.
type Checker interface {
	Has(feature domain.Feature) bool
}

// Grantor adds features with a shared expiration.
type Grantor interface {
	Grant(ctx context.Context, features []domain.Feature, expireAt *time.Time)
}
