package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// SQLiteBackend stores the record as a row in entitlement_records.
type SQLiteBackend struct {
	db  *sql.DB
	key string
}

// NewSQLiteBackend creates a SQLite backend. The schema must already be migrated.
func NewSQLiteBackend(db *sql.DB, key string) *SQLiteBackend {
	if key == "" {
		key = DefaultKey
	}
	return &SQLiteBackend{db: db, key: key}
}

// Load reads the record row.
func (b *SQLiteBackend) Load(ctx context.Context) (*domain.Record, error) {
	var payload string
	err := b.db.QueryRowContext(ctx,
		`SELECT payload FROM entitlement_records WHERE record_key = ?`, b.key,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load entitlements: %w", err)
	}
	return domain.DecodeRecord([]byte(payload))
}

// Save upserts the record row.
func (b *SQLiteBackend) Save(ctx context.Context, record *domain.Record) error {
	data, err := domain.EncodeRecord(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO entitlement_records (record_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(record_key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`
	_, err = b.db.ExecContext(ctx, query, b.key, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save entitlements: %w", err)
	}
	return nil
}

// Delete removes the record row.
func (b *SQLiteBackend) Delete(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM entitlement_records WHERE record_key = ?`, b.key)
	if err != nil {
		return fmt.Errorf("failed to delete entitlements: %w", err)
	}
	return nil
}

var _ domain.Backend = (*SQLiteBackend)(nil)
