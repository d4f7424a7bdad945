package persistence

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// MemoryBackend keeps the encoded record in process memory. Records
// round-trip through the JSON codec so callers never share state with it.
type MemoryBackend struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryBackend creates an empty memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Load decodes the held record.
func (b *MemoryBackend) Load(_ context.Context) (*domain.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, nil
	}
	return domain.DecodeRecord(b.data)
}

// Save encodes and holds the record.
func (b *MemoryBackend) Save(_ context.Context, record *domain.Record) error {
	data, err := domain.EncodeRecord(record)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.data = data
	b.mu.Unlock()
	return nil
}

// Delete drops the held record.
func (b *MemoryBackend) Delete(_ context.Context) error {
	b.mu.Lock()
	b.data = nil
	b.mu.Unlock()
	return nil
}

var _ domain.Backend = (*MemoryBackend)(nil)
