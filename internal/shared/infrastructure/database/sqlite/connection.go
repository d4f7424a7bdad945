package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/felixgeelhaar/overland/internal/shared/infrastructure/database"
)

// Open opens (creating if needed) the SQLite database at path.
// An empty path uses database.DefaultSQLitePath; ":memory:" opens a private
// in-memory database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = database.DefaultSQLitePath()
	}
	path = strings.TrimPrefix(path, "sqlite://")

	dsn := path
	if path != ":memory:" {
		if err := database.EnsureDirectory(path); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		// - journal_mode=WAL: Write-Ahead Logging for better concurrency
		// - busy_timeout=5000: Wait 5s on lock instead of failing immediately
		// - synchronous=NORMAL: Good balance of safety and speed
		if !strings.Contains(dsn, "?") {
			dsn += "?"
		} else {
			dsn += "&"
		}
		dsn += "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite doesn't support multiple writers, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return db, nil
}
