package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/shopsmart/internal/models"
)

// ListProfileIDs returns every stored profile id in sorted order
func (db *DB) ListProfileIDs(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `SELECT profile_id FROM diet_plans ORDER BY profile_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// LoadAllProfiles reads every diet plan. This is the read snapshot a
// recompute aggregates from.
func (db *DB) LoadAllProfiles(ctx context.Context) (models.Profiles, error) {
	rows, err := db.Pool.Query(ctx, `SELECT profile_id, plan FROM diet_plans`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := models.Profiles{}
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}

		plan, err := DecodePlan(raw)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", id, err)
		}
		profiles[id] = *plan
	}

	return profiles, rows.Err()
}

// GetDietPlan returns the plan for a profile. A profile that does not exist
// yet is created with an empty plan, which is how new profiles come to be.
func (db *DB) GetDietPlan(ctx context.Context, profileID string) (*models.DietPlan, error) {
	var raw []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT plan FROM diet_plans WHERE profile_id = $1
	`, profileID).Scan(&raw)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			plan := models.NewDietPlan()
			if err := db.SaveDietPlan(ctx, profileID, plan); err != nil {
				return nil, err
			}
			return plan, nil
		}
		return nil, err
	}

	return DecodePlan(raw)
}

// SaveDietPlan inserts or replaces the plan of a profile
func (db *DB) SaveDietPlan(ctx context.Context, profileID string, plan *models.DietPlan) error {
	data, err := EncodePlan(plan)
	if err != nil {
		return err
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO diet_plans (profile_id, plan)
		VALUES ($1, $2)
		ON CONFLICT (profile_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			updated_at = NOW()
	`, profileID, string(data))

	return err
}

// DeleteProfile removes a profile's plan
func (db *DB) DeleteProfile(ctx context.Context, profileID string) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM diet_plans WHERE profile_id = $1`, profileID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// EncodePlan normalizes and serializes a plan for storage
func EncodePlan(plan *models.DietPlan) ([]byte, error) {
	plan.Normalize()
	return json.Marshal(plan)
}

// DecodePlan reads a stored plan document
func DecodePlan(raw []byte) (*models.DietPlan, error) {
	plan := models.NewDietPlan()
	if err := json.Unmarshal(raw, plan); err != nil {
		return nil, fmt.Errorf("decoding diet plan: %w", err)
	}
	plan.Normalize()
	return plan, nil
}
