package cli

import (
	"errors"

	"github.com/felixgeelhaar/overland/internal/entitlements/application"
	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// ErrAppNotInitialized is returned by commands that need the wired app.
var ErrAppNotInitialized = errors.New("app not initialized")

// RequireEntitlement ensures the feature is unlocked. Without an app every
// feature is locked.
func RequireEntitlement(app *App, feature domain.Feature) error {
	if app == nil || app.Cache == nil {
		return application.Require(nil, feature)
	}
	return application.Require(app.Cache, feature)
}
