package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/foxxcyber/shopsmart/internal/models"
	"github.com/foxxcyber/shopsmart/internal/testutil"
)

const seedPlan = `{
	"day_types": [{
		"id": "workday",
		"name": "Workday",
		"lunch": [{"name": "Rice", "quantity": 80, "unit": "g"}],
		"dinner": [{"name": "Chicken", "quantity": 0.3, "unit": "kg", "prices": {"lidl": 8}}]
	}],
	"week": {"monday": "workday"}
}`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing plan file: %v", err)
	}
	return path
}

func TestReadPlan(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"valid", seedPlan, nil},
		{"dangling weekday", `{"day_types": [], "week": {"friday": "ghost"}}`, models.ErrDayTypeNotFound},
		{"unknown store", `{"day_types": [{"id": "a", "lunch": [{"name": "x", "quantity": 1, "prices": {"coop": 1}}]}]}`, models.ErrUnknownStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := readPlan(writeFile(t, tt.content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("reading plan: %v", err)
			}
			if len(plan.DayTypes) != 1 || plan.DayTypes[0].Breakfast == nil {
				t.Errorf("expected one normalized day type, got %+v", plan.DayTypes)
			}
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		if _, err := readPlan(writeFile(t, `{"day_types": [`)); err == nil {
			t.Error("expected an error for malformed json")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := readPlan(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})
}

func TestPreview_DoesNotWrite(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()

	stale := models.ShoppingItem{ID: "old bread", Name: "Old bread", Quantity: 500, Unit: models.UnitGram, Freshness: models.FreshnessFresh}
	if err := store.CommitShoppingListChanges(ctx, models.ChangeSet{Upserts: []models.ShoppingItem{stale}}); err != nil {
		t.Fatalf("seeding list: %v", err)
	}

	plan, err := readPlan(writeFile(t, seedPlan))
	if err != nil {
		t.Fatalf("reading plan: %v", err)
	}

	var out bytes.Buffer
	if err := preview(ctx, &out, store, "marco", plan); err != nil {
		t.Fatalf("preview: %v", err)
	}

	for _, want := range []string{
		"Profiles: 2",
		"Items after import: 2",
		"Estimated total: 2.40",
		"Upserts (2):",
		"  Rice - 80 g",
		"Deletes (1):",
		"  old bread",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out.String())
		}
	}

	items, _ := store.LoadShoppingList(ctx)
	if len(items) != 1 || items[0].ID != "old bread" {
		t.Errorf("expected list untouched, got %+v", items)
	}
	if ids, _ := store.ListProfileIDs(ctx); len(ids) != 1 {
		t.Errorf("expected no profile written, got %v", ids)
	}
}
