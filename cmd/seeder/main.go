package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/foxxcyber/shopsmart/internal/app"
	"github.com/foxxcyber/shopsmart/internal/config"
	"github.com/foxxcyber/shopsmart/internal/models"
	"github.com/foxxcyber/shopsmart/internal/planner"
	"github.com/foxxcyber/shopsmart/internal/services"
)

func main() {
	// Command line flags
	file := flag.String("file", "", "Diet plan JSON file to import (required)")
	profileID := flag.String("profile", models.DefaultProfileID, "Profile the plan is stored under")
	dryRun := flag.Bool("dry-run", false, "Preview the shopping list changes without writing to the database")
	flag.Parse()

	// Load .env
	godotenv.Load()

	// Load config
	cfg := config.Load()
	log := app.NewLogger(cfg)
	slog.SetDefault(log)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: seeder -file plan.json [-profile id] [-dry-run]")
		os.Exit(2)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	plan, err := readPlan(*file)
	if err != nil {
		log.Error("failed to read diet plan", "file", *file, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if *dryRun {
		log.Info("DRY RUN - no changes will be made")
		if err := preview(ctx, os.Stdout, store, *profileID, plan); err != nil {
			log.Error("preview failed", "error", err)
			os.Exit(1)
		}
		return
	}

	result, err := services.NewShoppingListService(store, log).SaveDietPlan(ctx, *profileID, plan)
	if err != nil {
		log.Error("import failed", "profile", *profileID, "error", err)
		os.Exit(1)
	}

	log.Info("import complete",
		"profile", *profileID,
		"items", len(result.Items),
		"upserts", len(result.Changes.Upserts),
		"deletes", len(result.Changes.DeleteIDs),
	)
}

func readPlan(path string) (*models.DietPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	plan := models.NewDietPlan()
	if err := json.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	plan.Normalize()

	return plan, nil
}

// preview computes the list as it would be after the import and prints the
// diff to w; nothing is written to the store
func preview(ctx context.Context, w io.Writer, store services.Repository, profileID string, plan *models.DietPlan) error {
	profiles, err := store.LoadAllProfiles(ctx)
	if err != nil {
		return err
	}
	profiles[profileID] = *plan

	prior, err := store.LoadShoppingList(ctx)
	if err != nil {
		return err
	}

	items := planner.Reconcile(planner.Aggregate(profiles), prior)
	changes := planner.Diff(prior, items)

	fmt.Fprintf(w, "Profiles: %d\n", len(profiles))
	fmt.Fprintf(w, "Items after import: %d\n", len(items))
	fmt.Fprintf(w, "Estimated total: %.2f\n\n", planner.Round2(planner.TotalCost(items)))

	fmt.Fprintf(w, "Upserts (%d):\n", len(changes.Upserts))
	for _, item := range changes.Upserts {
		fmt.Fprintf(w, "  %s - %v %s\n", item.Name, item.Quantity, item.Unit)
	}
	fmt.Fprintf(w, "Deletes (%d):\n", len(changes.DeleteIDs))
	for _, id := range changes.DeleteIDs {
		fmt.Fprintf(w, "  %s\n", id)
	}

	return nil
}
