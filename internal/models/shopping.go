package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidFreshness = errors.New("invalid freshness")

// Unit is the unit a shopping item quantity is expressed in
type Unit string

const (
	UnitGram     Unit = "g"
	UnitKilogram Unit = "kg"
)

// Freshness is a coarse perishability indicator
type Freshness string

const (
	FreshnessUrgent Freshness = "urgent"
	FreshnessSoon   Freshness = "soon"
	FreshnessFresh  Freshness = "fresh"
)

// ParseFreshness accepts the three levels plus the colour names older
// clients stored (red, yellow, blue/green).
func ParseFreshness(value string) (Freshness, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "urgent", "red":
		return FreshnessUrgent, nil
	case "soon", "yellow":
		return FreshnessSoon, nil
	case "fresh", "blue", "green":
		return FreshnessFresh, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFreshness, value)
}

// Rank orders freshness from most to least urgent
func (f Freshness) Rank() int {
	switch f {
	case FreshnessUrgent:
		return 0
	case FreshnessSoon:
		return 1
	}
	return 2
}

// ShoppingItem is one row of the consolidated shopping list.
// ID, Name, Quantity and Unit are derived from the diet plans; Prices,
// Freshness and IsHighlighted belong to the user.
type ShoppingItem struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Quantity      float64   `json:"quantity"`
	Unit          Unit      `json:"unit"`
	Prices        Prices    `json:"prices"`
	Freshness     Freshness `json:"freshness"`
	IsHighlighted bool      `json:"is_highlighted"`
}

// QuantityInKg converts the quantity for per-kilogram pricing
func (i ShoppingItem) QuantityInKg() float64 {
	if i.Unit == UnitGram {
		return i.Quantity / 1000
	}
	return i.Quantity
}

// Equal reports whether two items would be stored identically
func (i ShoppingItem) Equal(other ShoppingItem) bool {
	return i.ID == other.ID &&
		i.Name == other.Name &&
		i.Quantity == other.Quantity &&
		i.Unit == other.Unit &&
		i.Freshness == other.Freshness &&
		i.IsHighlighted == other.IsHighlighted &&
		i.Prices.Equal(other.Prices)
}

// ChangeSet is what a recompute writes: rows to insert or overwrite and
// previously stored ids to remove. It is applied as one atomic batch.
type ChangeSet struct {
	Upserts   []ShoppingItem `json:"upserts"`
	DeleteIDs []string       `json:"delete_ids"`
}

// IsEmpty reports whether there is nothing to write
func (c ChangeSet) IsEmpty() bool {
	return len(c.Upserts) == 0 && len(c.DeleteIDs) == 0
}

// SortOrder selects how the list view is ordered
type SortOrder string

const (
	SortDefault      SortOrder = "default" // highlighted first, then by name
	SortAlphabetical SortOrder = "alphabetical"
	SortFreshness    SortOrder = "freshness"
)

// ParseSortOrder maps a query value to a sort order; empty means default
func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(value) {
	case "", SortDefault:
		return SortDefault, nil
	case SortAlphabetical, SortFreshness:
		return SortOrder(value), nil
	}
	return "", fmt.Errorf("invalid sort order: %q", value)
}

// ListQuery holds the search and sort parameters of the list view
type ListQuery struct {
	Search string
	Sort   SortOrder
}

// ShoppingItemView is an item annotated with the store it should be bought at
type ShoppingItemView struct {
	ShoppingItem
	SelectedStore *Store   `json:"selected_store,omitempty"`
	SelectedPrice *float64 `json:"selected_price,omitempty"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty"` // nil when no store has a price
}

// ShoppingListView is the list as presented, with the estimated total
type ShoppingListView struct {
	Items        []ShoppingItemView `json:"items"`
	ItemCount    int                `json:"item_count"`
	Total        float64            `json:"total"`
	TotalRounded float64            `json:"total_rounded"`
}

// Request types

// UpdateShoppingItemRequest edits the user-owned fields of an item.
// Omitted fields are left untouched.
type UpdateShoppingItemRequest struct {
	Prices        *Prices `json:"prices,omitempty"`
	Freshness     *string `json:"freshness,omitempty"`
	IsHighlighted *bool   `json:"is_highlighted,omitempty"`
}
