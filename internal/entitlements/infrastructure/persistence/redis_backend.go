package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

const redisKeyPrefix = "overland:"

// RedisBackend stores the record as a JSON string value.
type RedisBackend struct {
	client redis.Cmdable
	key    string
}

// NewRedisBackend creates a Redis backend. The key is namespaced under "overland:".
func NewRedisBackend(client redis.Cmdable, key string) *RedisBackend {
	if key == "" {
		key = DefaultKey
	}
	return &RedisBackend{client: client, key: redisKeyPrefix + key}
}

// Key returns the namespaced Redis key.
func (b *RedisBackend) Key() string {
	return b.key
}

// Load reads the record value.
func (b *RedisBackend) Load(ctx context.Context) (*domain.Record, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load entitlements: %w", err)
	}
	if len(data) > maxRecordSize {
		return nil, fmt.Errorf("entitlement record exceeds %d bytes", maxRecordSize)
	}
	return domain.DecodeRecord(data)
}

// Save replaces the record value.
func (b *RedisBackend) Save(ctx context.Context, record *domain.Record) error {
	data, err := domain.EncodeRecord(record)
	if err != nil {
		return err
	}
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save entitlements: %w", err)
	}
	return nil
}

// Delete removes the record value.
func (b *RedisBackend) Delete(ctx context.Context) error {
	if err := b.client.Del(ctx, b.key).Err(); err != nil {
		return fmt.Errorf("failed to delete entitlements: %w", err)
	}
	return nil
}

var _ domain.Backend = (*RedisBackend)(nil)
