// Package app wires configuration to the concrete logger and store shared
// by the server and the seeder.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/foxxcyber/shopsmart/internal/config"
	"github.com/foxxcyber/shopsmart/internal/database"
	"github.com/foxxcyber/shopsmart/internal/database/sqlite"
	"github.com/foxxcyber/shopsmart/internal/services"
)

// Store is a migrated repository that must be closed on shutdown
type Store interface {
	services.Repository
	Close() error
}

// NewLogger builds the process logger: text in development, JSON elsewhere
func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// OpenStore connects to the configured database and applies migrations
func OpenStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(); err != nil {
			store.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		return store, nil

	case config.DriverPostgres:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		return db, nil
	}

	return nil, &config.ConfigError{Key: "DATABASE_DRIVER", Reason: fmt.Sprintf("unknown driver %q", cfg.DatabaseDriver)}
}
