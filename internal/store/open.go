// Package store implements the weighbridge record Provider over database/sql.
// Production reads the MySQL "romana" database; SQLite replicas are supported
// for local runs and tests.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"dtefiler/internal/config"
	"dtefiler/internal/logging"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "modernc.org/sqlite"             // SQLite driver (pure Go)
)

// Open opens and pings the configured record database.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	driver := cfg.Driver
	switch driver {
	case "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	logging.Records("connected to %s record store", driver)
	return db, nil
}
