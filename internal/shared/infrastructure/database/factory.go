package database

import (
	"os"
	"path/filepath"
)

// Config holds durable store connection configuration.
type Config struct {
	// Driver specifies the backend to use.
	// If empty or "auto", it will be detected from the URL.
	Driver Driver

	// URL is the connection string for PostgreSQL or Redis, or a local path
	// for the SQLite and file drivers.
	URL string

	// SQLitePath is the path to the SQLite database file.
	// Defaults to ~/.overland/entitlements.db
	SQLitePath string

	// MaxConns is the maximum number of connections (PostgreSQL only).
	MaxConns int
}

// ResolveDriver returns the configured driver, detecting it from the URL
// when unset.
func (c Config) ResolveDriver() Driver {
	if c.Driver == "" || c.Driver == "auto" {
		return DetectDriver(c.URL)
	}
	return c.Driver
}

// DefaultDataDir returns ~/.overland, or .overland if the home directory is unknown.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".overland")
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	return filepath.Join(DefaultDataDir(), "entitlements.db")
}

// DefaultFilePath returns the default JSON file path for the file driver.
func DefaultFilePath() string {
	return filepath.Join(DefaultDataDir(), "entitlements.json")
}

// EnsureDirectory creates the parent directory for a file path if it doesn't exist.
func EnsureDirectory(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o700)
}
