// Package persistence holds the durable entitlement store and its backends.
package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// DefaultKey is the storage key the entitlement record lives under.
const DefaultKey = "premium-entitlements"

// maxRecordSize bounds how much a backend will read for one record.
const maxRecordSize = 64 << 10

// DurableStore adapts a Backend to domain.Store. Backend errors and panics
// are logged and swallowed: reads degrade to absent, writes are dropped.
type DurableStore struct {
	backend domain.Backend
	logger  *slog.Logger
}

// NewDurableStore wraps backend.
func NewDurableStore(backend domain.Backend, logger *slog.Logger) *DurableStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DurableStore{backend: backend, logger: logger}
}

// Get returns the stored record or nil when absent or unreadable.
func (s *DurableStore) Get(ctx context.Context) *domain.Record {
	var record *domain.Record
	s.guard(ctx, "load", func() error {
		var err error
		record, err = s.backend.Load(ctx)
		return err
	})
	return record
}

// Set replaces the stored record.
func (s *DurableStore) Set(ctx context.Context, record *domain.Record) {
	s.guard(ctx, "save", func() error {
		return s.backend.Save(ctx, record)
	})
}

// Clear removes the stored record.
func (s *DurableStore) Clear(ctx context.Context) {
	s.guard(ctx, "delete", func() error {
		return s.backend.Delete(ctx)
	})
}

func (s *DurableStore) guard(ctx context.Context, op string, fn func() error) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("backend panic: %v", r)
			}
		}()
		err = fn()
	}()
	if err != nil {
		s.logger.WarnContext(ctx, "entitlement store operation failed",
			"operation", op,
			"error", err,
		)
	}
}

var _ domain.Store = (*DurableStore)(nil)
