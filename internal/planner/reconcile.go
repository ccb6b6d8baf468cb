package planner

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/foxxcyber/shopsmart/internal/models"
)

var idReplacer = strings.NewReplacer(
	".", "_",
	"#", "_",
	"$", "_",
	"[", "_",
	"]", "_",
	"/", "_",
)

// SanitizeID derives the persisted id of an item: the normalized name with
// . # $ [ ] / replaced by underscores. Spaces are kept.
func SanitizeID(name string) string {
	return idReplacer.Replace(NormalizeName(name))
}

// Round2 rounds to two decimals
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// ToDisplayQuantity converts a gram total to the stored quantity and unit:
// kilograms from 1000 g upwards, grams below.
func ToDisplayQuantity(grams float64) (float64, models.Unit) {
	if grams >= 1000 {
		return Round2(grams / 1000), models.UnitKilogram
	}
	return Round2(grams), models.UnitGram
}

func capitalize(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// Reconcile builds the new shopping list from an aggregation and the list
// that was stored before. Derived fields (id, name, quantity, unit) always
// come from the aggregation. User-owned fields (prices, freshness,
// highlight) come from the prior item with the same id; a new item takes
// the carried prices and starts fresh and not highlighted.
//
// Distinct names that sanitize to the same id are merged into one row,
// keeping the first name in key order. The result is sorted by id.
func Reconcile(agg Aggregation, prior []models.ShoppingItem) []models.ShoppingItem {
	priorByID := make(map[string]models.ShoppingItem, len(prior))
	for _, item := range prior {
		priorByID[item.ID] = item
	}

	merged := make(map[string]*AggregatedItem, len(agg))
	var ids []string
	for _, key := range agg.Keys() {
		entry := agg[key]
		id := SanitizeID(entry.DisplayName)
		if existing, ok := merged[id]; ok {
			existing.QuantityGrams += entry.QuantityGrams
			continue
		}
		copied := *entry
		merged[id] = &copied
		ids = append(ids, id)
	}
	sort.Strings(ids)

	items := make([]models.ShoppingItem, 0, len(ids))
	for _, id := range ids {
		entry := merged[id]
		if entry.QuantityGrams <= 0 {
			continue
		}

		quantity, unit := ToDisplayQuantity(entry.QuantityGrams)
		item := models.ShoppingItem{
			ID:        id,
			Name:      capitalize(entry.DisplayName),
			Quantity:  quantity,
			Unit:      unit,
			Prices:    entry.CarriedPrices.Clone(),
			Freshness: models.FreshnessFresh,
		}

		if existing, ok := priorByID[id]; ok {
			item.Prices = existing.Prices.Clone()
			if freshness, err := models.ParseFreshness(string(existing.Freshness)); err == nil {
				item.Freshness = freshness
			}
			item.IsHighlighted = existing.IsHighlighted
		}
		if item.Prices == nil {
			item.Prices = models.Prices{}
		}

		items = append(items, item)
	}

	return items
}

// Diff compares the freshly reconciled list against the stored one.
// Upserts holds new or changed rows in list order; DeleteIDs holds stored
// ids missing from next, sorted.
func Diff(prior, next []models.ShoppingItem) models.ChangeSet {
	priorByID := make(map[string]models.ShoppingItem, len(prior))
	for _, item := range prior {
		priorByID[item.ID] = item
	}

	changes := models.ChangeSet{
		Upserts:   []models.ShoppingItem{},
		DeleteIDs: []string{},
	}

	nextIDs := make(map[string]bool, len(next))
	for _, item := range next {
		nextIDs[item.ID] = true
		if existing, ok := priorByID[item.ID]; ok && existing.Equal(item) {
			continue
		}
		changes.Upserts = append(changes.Upserts, item)
	}

	for id := range priorByID {
		if !nextIDs[id] {
			changes.DeleteIDs = append(changes.DeleteIDs, id)
		}
	}
	sort.Strings(changes.DeleteIDs)

	return changes
}
