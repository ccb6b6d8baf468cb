package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/shopsmart/internal/models"
)

const shoppingItemColumns = `id, name, quantity, unit, prices, freshness, is_highlighted`

// LoadShoppingList returns the stored list ordered by id
func (db *DB) LoadShoppingList(ctx context.Context) ([]models.ShoppingItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+shoppingItemColumns+`
		FROM shopping_items
		ORDER BY id
	`)
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
func (db *DB) GetShoppingItem(ctx context.Context, id string) (*models.ShoppingItem, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT `+shoppingItemColumns+`
		FROM shopping_items
		WHERE id = $1
	`, id)

	item, err := scanShoppingItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	return item, nil
}

// UpdateShoppingItem overwrites the user-owned fields of an existing row
func (db *DB) UpdateShoppingItem(ctx context.Context, item *models.ShoppingItem) error {
	prices, err := EncodePrices(item.Prices)
	if err != nil {
		return err
	}

	result, err := db.Pool.Exec(ctx, `
		UPDATE shopping_items
		SET prices = $2, freshness = $3, is_highlighted = $4, updated_at = NOW()
		WHERE id = $1
	`, item.ID, prices, string(item.Freshness), item.IsHighlighted)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}

// CommitShoppingListChanges applies a recompute in one transaction: either
// every upsert and delete lands or none does.
func (db *DB) CommitShoppingListChanges(ctx context.Context, changes models.ChangeSet) error {
	if changes.IsEmpty() {
		return nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, item := range changes.Upserts {
		prices, err := EncodePrices(item.Prices)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO shopping_items (id, name, quantity, unit, prices, freshness, is_highlighted)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				quantity = EXCLUDED.quantity,
				unit = EXCLUDED.unit,
				prices = EXCLUDED.prices,
				freshness = EXCLUDED.freshness,
				is_highlighted = EXCLUDED.is_highlighted,
				updated_at = NOW()
		`, item.ID, item.Name, item.Quantity, string(item.Unit), prices, string(item.Freshness), item.IsHighlighted)
		if err != nil {
			return fmt.Errorf("upserting %q: %w", item.ID, err)
		}
	}

	if len(changes.DeleteIDs) > 0 {
		_, err = tx.Exec(ctx, `DELETE FROM shopping_items WHERE id = ANY($1)`, changes.DeleteIDs)
		if err != nil {
			return fmt.Errorf("deleting stale items: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func scanShoppingItem(row pgx.Row) (*models.ShoppingItem, error) {
	item := &models.ShoppingItem{}
	var unit, freshness string
	var prices []byte

	err := row.Scan(&item.ID, &item.Name, &item.Quantity, &unit, &prices, &freshness, &item.IsHighlighted)
	if err != nil {
		return nil, err
	}

	item.Unit = models.Unit(unit)
	item.Freshness = DecodeFreshness(freshness)
	if item.Prices, err = DecodePrices(prices); err != nil {
		return nil, fmt.Errorf("item %q: %w", item.ID, err)
	}

	return item, nil
}

// EncodePrices serializes a price map as a JSON object, never null
func EncodePrices(prices models.Prices) (string, error) {
	if prices == nil {
		prices = models.Prices{}
	}
	data, err := json.Marshal(prices)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodePrices reads a stored price map; an empty column is no prices
func DecodePrices(raw []byte) (models.Prices, error) {
	prices := models.Prices{}
	if len(raw) == 0 {
		return prices, nil
	}
	if err := json.Unmarshal(raw, &prices); err != nil {
		return nil, fmt.Errorf("decoding prices: %w", err)
	}
	return prices, nil
}

// DecodeFreshness maps stored values, including legacy colours; anything
// unreadable reads as fresh
func DecodeFreshness(value string) models.Freshness {
	freshness, err := models.ParseFreshness(value)
	if err != nil {
		return models.FreshnessFresh
	}
	return freshness
}
