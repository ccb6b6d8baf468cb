package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/foxxcyber/shopsmart/internal/database"
	"github.com/foxxcyber/shopsmart/internal/database/sqlite"
)

func NewTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := store.Migrate(); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// NewTestDB connects to the Postgres database in TEST_DATABASE_URL, migrates
// it and empties both tables. The test is skipped when the variable is unset.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.Connect(url)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	ctx := context.Background()
	if err := db.RunMigrations(ctx); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, `TRUNCATE diet_plans, shopping_items`); err != nil {
		t.Fatalf("emptying test database: %v", err)
	}

	return db
}
