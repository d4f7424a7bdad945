package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
	"github.com/felixgeelhaar/overland/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/overland/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/overland/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/overland/internal/shared/infrastructure/migrations"
)

// BackendConfig selects and configures the durable store backend.
type BackendConfig struct {
	database.Config

	// Key is the record key for keyed backends.
	Key string
}

// OpenBackend opens the backend selected by cfg. The returned close function
// releases any connection the backend holds and is never nil.
func OpenBackend(ctx context.Context, cfg BackendConfig, logger *slog.Logger) (domain.Backend, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() error { return nil }

	driver := cfg.ResolveDriver()
	logger.Debug("opening entitlement store", "driver", driver)

	switch driver {
	case database.DriverMemory:
		return NewMemoryBackend(), noop, nil

	case database.DriverFile:
		path := cfg.URL
		if path == "" {
			path = database.DefaultFilePath()
		}
		backend, err := NewFileBackend(strings.TrimPrefix(path, "file://"))
		if err != nil {
			return nil, noop, err
		}
		return backend, noop, nil

	case database.DriverSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = cfg.URL
		}
		db, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, noop, err
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("failed to migrate SQLite: %w", err)
		}
		return NewSQLiteBackend(db, cfg.Key), db.Close, nil

	case database.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.Config)
		if err != nil {
			return nil, noop, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("failed to migrate PostgreSQL: %w", err)
		}
		return NewPostgresBackend(pool, cfg.Key), func() error { pool.Close(); return nil }, nil

	case database.DriverRedis:
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("failed to ping Redis: %w", err)
		}
		return NewRedisBackend(client, cfg.Key), client.Close, nil

	default:
		return nil, noop, fmt.Errorf("%w: %s", domain.ErrUnsupportedDriver, driver)
	}
}
