package application

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// MockBillingAdapter is a mock implementation of domain.BillingAdapter.
type MockBillingAdapter struct {
	mock.Mock
}

func (m *MockBillingAdapter) Init(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBillingAdapter) Products(ctx context.Context) domain.Products {
	args := m.Called(ctx)
	return args.Get(0).(domain.Products)
}

func (m *MockBillingAdapter) Purchase(ctx context.Context, plan domain.Plan) domain.PurchaseResult {
	args := m.Called(ctx, plan)
	return args.Get(0).(domain.PurchaseResult)
}

func (m *MockBillingAdapter) Restore(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockBillingAdapter) Shutdown(ctx context.Context) {
	m.Called(ctx)
}

// MockGrantor is a mock implementation of Grantor.
type MockGrantor struct {
	mock.Mock
}

func (m *MockGrantor) Grant(ctx context.Context, features []domain.Feature, expireAt *time.Time) {
	m.Called(ctx, features, expireAt)
}

// recordingTracker keeps every tracked event.
type recordingTracker struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingTracker) Track(_ context.Context, event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingTracker) names() []domain.EventName {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventName, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Name)
	}
	return out
}

type panickingTracker struct{}

func (panickingTracker) Track(context.Context, domain.Event) {
	panic("sink exploded")
}

// fakeStore is an in-memory domain.Store whose writes can be made to
// silently fail, the way a degraded durable store behaves.
type fakeStore struct {
	mu         sync.Mutex
	record     *domain.Record
	failWrites bool
	sets       int
	clears     int
}

func (s *fakeStore) Get(context.Context) *domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil
	}
	return domain.NewRecord(s.record.Features, s.record.ExpireAt)
}

func (s *fakeStore) Set(_ context.Context, record *domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.failWrites {
		return
	}
	s.record = domain.NewRecord(record.Features, record.ExpireAt)
}

func (s *fakeStore) Clear(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	if s.failWrites {
		return
	}
	s.record = nil
}

func (s *fakeStore) stored() *domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// manualClock is a settable clock.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *manualClock) Clock() domain.Clock {
	return c.Now
}
