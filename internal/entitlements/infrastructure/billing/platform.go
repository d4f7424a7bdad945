// Package billing adapts a platform subscription store to the entitlement
// domain's BillingAdapter port.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotConnected is returned by a Platform used before Connect.
var ErrNotConnected = errors.New("billing platform not connected")

// ResponseCode is the platform's status for a billing call or update.
type ResponseCode int

const (
	CodeOK ResponseCode = iota
	CodeUserCanceled
	CodeItemAlreadyOwned
	CodeItemUnavailable
	CodeServiceUnavailable
	CodeBillingUnavailable
	CodeDeveloperError
	CodeError
)

var codeNames = map[ResponseCode]string{
	CodeOK:                 "ok",
	CodeUserCanceled:       "user_canceled",
	CodeItemAlreadyOwned:   "item_already_owned",
	CodeItemUnavailable:    "item_unavailable",
	CodeServiceUnavailable: "service_unavailable",
	CodeBillingUnavailable: "billing_unavailable",
	CodeDeveloperError:     "developer_error",
	CodeError:              "error",
}

func (c ResponseCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// PurchaseState is the platform lifecycle state of one purchase.
type PurchaseState int

const (
	StateUnspecified PurchaseState = iota
	StatePending
	StatePurchased
)

// Purchase is one platform purchase record.
type Purchase struct {
	OrderID      string
	ProductID    string
	Token        string
	State        PurchaseState
	Acknowledged bool
	PurchasedAt  time.Time
}

// Update is a purchase notification pushed by the platform, usually in
// response to LaunchPurchase.
type Update struct {
	Code         ResponseCode
	Purchases    []Purchase
	DebugMessage string
}

// Error is a failed platform call.
type Error struct {
	Code    ResponseCode
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "billing: " + e.Code.String()
	}
	return fmt.Sprintf("billing: %s: %s", e.Code, e.Message)
}

// Platform is the platform billing SDK surface the adapter needs.
type Platform interface {
	// Connect establishes the billing connection.
	Connect(ctx context.Context) error

	// Disconnect releases the billing connection.
	Disconnect(ctx context.Context) error

	// QueryPurchases lists the user's current subscription purchases.
	QueryPurchases(ctx context.Context) ([]Purchase, error)

	// LaunchPurchase starts the purchase UI for productID. The outcome is
	// delivered on Updates.
	LaunchPurchase(ctx context.Context, productID string) error

	// Acknowledge confirms a purchase so the platform does not refund it.
	Acknowledge(ctx context.Context, token string) error

	// Updates delivers purchase notifications for the lifetime of the connection.
	Updates() <-chan Update
}
