// Package planner turns diet plans into a priced shopping list. Everything
// here is a pure function of its inputs.
package planner

import (
	"sort"
	"strings"

	"github.com/foxxcyber/shopsmart/internal/models"
)

// AggregatedItem is the running total for one normalized item name
type AggregatedItem struct {
	DisplayName   string        // trimmed name of the first occurrence
	QuantityGrams float64       // summed over every weekday using the item
	CarriedPrices models.Prices // prices of the first occurrence
}

// Aggregation maps a normalized item name to its total
type Aggregation map[string]*AggregatedItem

// Keys returns the normalized names in sorted order
func (a Aggregation) Keys() []string {
	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeName is the aggregation identity of an item: trimmed and lowercased
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ToGrams converts a diet quantity to grams. Only "kg" is scaled; every
// other unit is taken as grams.
func ToGrams(quantity float64, unit string) float64 {
	if strings.EqualFold(strings.TrimSpace(unit), string(models.UnitKilogram)) {
		return quantity * 1000
	}
	return quantity
}

// Aggregate folds every profile into one accumulator. A day type counts
// once per weekday that references it; unreferenced day types contribute
// nothing. Items with a blank name or a non-positive quantity are skipped.
//
// Profiles are visited in sorted id order and day types in plan order, so
// the first occurrence that seeds the display name and carried prices is
// stable across runs.
func Aggregate(profiles models.Profiles) Aggregation {
	acc := make(Aggregation)

	for _, profileID := range profiles.IDs() {
		plan := profiles[profileID]
		usage := plan.Week.Usage()

		for _, dayType := range plan.DayTypes {
			multiplier := usage[dayType.ID]
			if multiplier == 0 {
				continue
			}

			for _, item := range dayType.Items() {
				name := strings.TrimSpace(item.Name)
				if name == "" || !(item.Quantity > 0) {
					continue
				}

				key := NormalizeName(name)
				grams := ToGrams(item.Quantity, item.Unit) * float64(multiplier)

				if existing, ok := acc[key]; ok {
					existing.QuantityGrams += grams
					continue
				}
				acc[key] = &AggregatedItem{
					DisplayName:   name,
					QuantityGrams: grams,
					CarriedPrices: item.Prices.Clone(),
				}
			}
		}
	}

	return acc
}
