package billing

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SandboxOutcome scripts how the sandbox answers LaunchPurchase.
type SandboxOutcome string

const (
	SandboxApprove SandboxOutcome = "approve"
	SandboxCancel  SandboxOutcome = "cancel"
	SandboxFail    SandboxOutcome = "fail"
	SandboxPending SandboxOutcome = "pending"
	SandboxOwned   SandboxOutcome = "owned"
)

// ParseSandboxOutcome validates a configured outcome. Empty means approve.
func ParseSandboxOutcome(s string) (SandboxOutcome, error) {
	switch o := SandboxOutcome(s); o {
	case "":
		return SandboxApprove, nil
	case SandboxApprove, SandboxCancel, SandboxFail, SandboxPending, SandboxOwned:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sandbox outcome %q", s)
	}
}

// SandboxPlatform is an in-process Platform for development and tests.
type SandboxPlatform struct {
	mu           sync.Mutex
	connected    bool
	outcome      SandboxOutcome
	connectErr   error
	queryErr     error
	owned        []Purchase
	acknowledged []string
	updates      chan Update
}

// SandboxOption configures a SandboxPlatform.
type SandboxOption func(*SandboxPlatform)

// WithOutcome sets the scripted purchase outcome.
func WithOutcome(outcome SandboxOutcome) SandboxOption {
	return func(s *SandboxPlatform) {
		s.outcome = outcome
	}
}

// WithOwnedProduct seeds an active, unacknowledged purchase of productID.
func WithOwnedProduct(productID string) SandboxOption {
	return func(s *SandboxPlatform) {
		s.owned = append(s.owned, newSandboxPurchase(productID, StatePurchased))
	}
}

// WithConnectError makes Connect fail with err.
func WithConnectError(err error) SandboxOption {
	return func(s *SandboxPlatform) {
		s.connectErr = err
	}
}

// WithQueryError makes QueryPurchases fail with err.
func WithQueryError(err error) SandboxOption {
	return func(s *SandboxPlatform) {
		s.queryErr = err
	}
}

// NewSandboxPlatform creates a sandbox that approves purchases by default.
func NewSandboxPlatform(opts ...SandboxOption) *SandboxPlatform {
	s := &SandboxPlatform{
		outcome: SandboxApprove,
		updates: make(chan Update, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SandboxPlatform) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connectErr != nil {
		return s.connectErr
	}
	s.connected = true
	return nil
}

func (s *SandboxPlatform) Disconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *SandboxPlatform) QueryPurchases(context.Context) ([]Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil, ErrNotConnected
	}
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return slices.Clone(s.owned), nil
}

func (s *SandboxPlatform) LaunchPurchase(_ context.Context, productID string) error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return ErrNotConnected
	}

	var update Update
	switch s.outcome {
	case SandboxApprove:
		p := newSandboxPurchase(productID, StatePurchased)
		s.owned = append(s.owned, p)
		update = Update{Code: CodeOK, Purchases: []Purchase{p}}
	case SandboxPending:
		update = Update{Code: CodeOK, Purchases: []Purchase{newSandboxPurchase(productID, StatePending)}}
	case SandboxCancel:
		update = Update{Code: CodeUserCanceled}
	case SandboxOwned:
		update = Update{Code: CodeItemAlreadyOwned}
	default:
		update = Update{Code: CodeError, DebugMessage: "sandbox declined the purchase"}
	}
	s.mu.Unlock()

	s.Emit(update)
	return nil
}

func (s *SandboxPlatform) Acknowledge(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return ErrNotConnected
	}
	for i := range s.owned {
		if s.owned[i].Token == token {
			s.owned[i].Acknowledged = true
		}
	}
	s.acknowledged = append(s.acknowledged, token)
	return nil
}

func (s *SandboxPlatform) Updates() <-chan Update {
	return s.updates
}

// Emit pushes an out-of-band update, as the platform does for renewals.
func (s *SandboxPlatform) Emit(update Update) {
	s.updates <- update
}

// Acknowledged returns the tokens acknowledged so far, in order.
func (s *SandboxPlatform) Acknowledged() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.acknowledged)
}

// Owned returns the sandbox's purchase records.
func (s *SandboxPlatform) Owned() []Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.owned)
}

func newSandboxPurchase(productID string, state PurchaseState) Purchase {
	return Purchase{
		OrderID:     "SANDBOX." + uuid.NewString(),
		ProductID:   productID,
		Token:       uuid.NewString(),
		State:       state,
		PurchasedAt: time.Now(),
	}
}

var _ Platform = (*SandboxPlatform)(nil)
