package domain

import "context"

// Backend is a raw key-value persistence mechanism for one entitlement record.
type Backend interface {
	// Load retrieves the stored record.
	// Returns nil, nil if nothing has been stored yet.
	Load(ctx context.Context) (*Record, error)

	// Save replaces the stored record.
	Save(ctx context.Context, record *Record) error

	// Delete removes the stored record. Deleting a missing record is not an error.
	Delete(ctx context.Context) error
}

// Store is the durable entitlement store. It never fails: read errors
// degrade to "absent" and write errors are dropped, because the in-memory
// cache stays authoritative for the running process.
type Store interface {
	// Get returns the stored record, or nil when absent or unreadable.
	Get(ctx context.Context) *Record

	// Set replaces the stored record.
	Set(ctx context.Context, record *Record)

	// Clear removes the stored record.
	Clear(ctx context.Context)
}
