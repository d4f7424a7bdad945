package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// PostgresBackend stores the record as a JSONB row in entitlement_records.
type PostgresBackend struct {
	pool *pgxpool.Pool
	key  string
}

// NewPostgresBackend creates a PostgreSQL backend.
func NewPostgresBackend(pool *pgxpool.Pool, key string) *PostgresBackend {
	if key == "" {
		key = DefaultKey
	}
	return &PostgresBackend{pool: pool, key: key}
}

// Load reads the record row.
func (b *PostgresBackend) Load(ctx context.Context) (*domain.Record, error) {
	var payload []byte
	err := b.pool.QueryRow(ctx,
		`SELECT payload::text FROM entitlement_records WHERE record_key = $1`, b.key,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load entitlements: %w", err)
	}
	return domain.DecodeRecord(payload)
}

// Save upserts the record row.
func (b *PostgresBackend) Save(ctx context.Context, record *domain.Record) error {
	data, err := domain.EncodeRecord(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO entitlement_records (record_key, payload, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (record_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := b.pool.Exec(ctx, query, b.key, string(data)); err != nil {
		return fmt.Errorf("failed to save entitlements: %w", err)
	}
	return nil
}

// Delete removes the record row.
func (b *PostgresBackend) Delete(ctx context.Context) error {
	if _, err := b.pool.Exec(ctx, `DELETE FROM entitlement_records WHERE record_key = $1`, b.key); err != nil {
		return fmt.Errorf("failed to delete entitlements: %w", err)
	}
	return nil
}

var _ domain.Backend = (*PostgresBackend)(nil)
