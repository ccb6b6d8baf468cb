package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/foxxcyber/shopsmart/internal/database"
	"github.com/foxxcyber/shopsmart/internal/models"
)

// ListProfileIDs returns every stored profile id in sorted order
func (s *Store) ListProfileIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT profile_id FROM diet_plans ORDER BY profile_id`)
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

// LoadAllProfiles reads every diet plan
func (s *Store) LoadAllProfiles(ctx context.Context) (models.Profiles, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT profile_id, plan FROM diet_plans`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := models.Profiles{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}

		plan, err := database.DecodePlan([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", id, err)
		}
		profiles[id] = *plan
	}

	return profiles, rows.Err()
}

// GetDietPlan returns the plan for a profile, creating an empty one on first read
func (s *Store) GetDietPlan(ctx context.Context, profileID string) (*models.DietPlan, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT plan FROM diet_plans WHERE profile_id = ?`, profileID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			plan := models.NewDietPlan()
			if err := s.SaveDietPlan(ctx, profileID, plan); err != nil {
				return nil, err
			}
			return plan, nil
		}
		return nil, err
	}

	return database.DecodePlan([]byte(raw))
}

// SaveDietPlan inserts or replaces the plan of a profile
func (s *Store) SaveDietPlan(ctx context.Context, profileID string, plan *models.DietPlan) error {
	data, err := database.EncodePlan(plan)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO diet_plans (profile_id, plan)
		VALUES (?, ?)
		ON CONFLICT (profile_id) DO UPDATE SET
			plan = excluded.plan,
			updated_at = CURRENT_TIMESTAMP
	`, profileID, string(data))

	return err
}

// DeleteProfile removes a profile's plan
func (s *Store) DeleteProfile(ctx context.Context, profileID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM diet_plans WHERE profile_id = ?`, profileID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return database.ErrProfileNotFound
	}

	return nil
}

const shoppingItemColumns = `id, name, quantity, unit, prices, freshness, is_highlighted`

type scanner interface {
	Scan(dest ...any) error
}

// LoadShoppingList returns the stored list ordered by id
func (s *Store) LoadShoppingList(ctx context.Context) ([]models.ShoppingItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+shoppingItemColumns+` FROM shopping_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.ShoppingItem{}
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// GetShoppingItem retrieves a single list row
func (s *Store) GetShoppingItem(ctx context.Context, id string) (*models.ShoppingItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+shoppingItemColumns+` FROM shopping_items WHERE id = ?`, id)

	item, err := scanShoppingItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrItemNotFound
		}
		return nil, err
	}

	return item, nil
}

// UpdateShoppingItem overwrites the user-owned fields of an existing row
func (s *Store) UpdateShoppingItem(ctx context.Context, item *models.ShoppingItem) error {
	prices, err := database.EncodePrices(item.Prices)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE shopping_items
		SET prices = ?, freshness = ?, is_highlighted = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, prices, string(item.Freshness), item.IsHighlighted, item.ID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return database.ErrItemNotFound
	}

	return nil
}

// CommitShoppingListChanges applies a recompute in one transaction
func (s *Store) CommitShoppingListChanges(ctx context.Context, changes models.ChangeSet) error {
	if changes.IsEmpty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range changes.Upserts {
		prices, err := database.EncodePrices(item.Prices)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO shopping_items (id, name, quantity, unit, prices, freshness, is_highlighted)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				quantity = excluded.quantity,
				unit = excluded.unit,
				prices = excluded.prices,
				freshness = excluded.freshness,
				is_highlighted = excluded.is_highlighted,
				updated_at = CURRENT_TIMESTAMP
		`, item.ID, item.Name, item.Quantity, string(item.Unit), prices, string(item.Freshness), item.IsHighlighted)
		if err != nil {
			return fmt.Errorf("upserting %q: %w", item.ID, err)
		}
	}

	for _, id := range changes.DeleteIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM shopping_items WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting %q: %w", id, err)
		}
	}

	return tx.Commit()
}

func scanShoppingItem(row scanner) (*models.ShoppingItem, error) {
	item := &models.ShoppingItem{}
	var unit, freshness, prices string

	err := row.Scan(&item.ID, &item.Name, &item.Quantity, &unit, &prices, &freshness, &item.IsHighlighted)
	if err != nil {
		return nil, err
	}

	item.Unit = models.Unit(unit)
	item.Freshness = database.DecodeFreshness(freshness)
	if item.Prices, err = database.DecodePrices([]byte(prices)); err != nil {
		return nil, fmt.Errorf("item %q: %w", item.ID, err)
	}

	return item, nil
}
