package database

import "strings"

// Driver represents a durable store backend type.
type Driver string

const (
	// DriverPostgres represents PostgreSQL.
	DriverPostgres Driver = "postgres"
	// DriverSQLite represents a local SQLite file.
	DriverSQLite Driver = "sqlite"
	// DriverRedis represents a Redis key.
	DriverRedis Driver = "redis"
	// DriverFile represents a single JSON file.
	DriverFile Driver = "file"
	// DriverMemory keeps the record in process memory only.
	DriverMemory Driver = "memory"
)

// String returns the string representation of the driver.
func (d Driver) String() string {
	return string(d)
}

// DetectDriver parses a connection string and returns the driver type.
// Returns DriverSQLite for empty URLs to enable zero-config local mode.
func DetectDriver(url string) Driver {
	if url == "" {
		return DriverSQLite
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres
	}

	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		return DriverRedis
	}

	if strings.HasSuffix(url, ".json") {
		return DriverFile
	}

	if strings.HasPrefix(url, "sqlite://") ||
		strings.HasPrefix(url, "file:") ||
		strings.HasSuffix(url, ".db") ||
		strings.HasSuffix(url, ".sqlite") ||
		strings.HasSuffix(url, ".sqlite3") {
		return DriverSQLite
	}

	// Local paths without a recognised extension stay on SQLite.
	return DriverSQLite
}

// IsValid returns true if the driver is a known type.
func (d Driver) IsValid() bool {
	switch d {
	case DriverPostgres, DriverSQLite, DriverRedis, DriverFile, DriverMemory:
		return true
	default:
		return false
	}
}
