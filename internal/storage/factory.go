package storage

import (
	"context"
	"fmt"
)

// Config selects and parameterizes a storage backend.
type Config struct {
	// Driver is one of: memory, sqlite, postgres, postgrespool.
	Driver string
	// DSN is the connection string (file path for sqlite, ignored for memory).
	DSN string
}

// Open constructs a Store for the configured driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "postgrespool":
		return OpenPostgresPool(ctx, cfg.DSN)
	case "postgres", "pgx":
		return OpenPostgres(cfg.DSN)
	case "sqlite", "sqlite3":
		return OpenSQLite(cfg.DSN)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
