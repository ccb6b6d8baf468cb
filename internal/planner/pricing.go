package planner

import (
	"github.com/foxxcyber/shopsmart/internal/models"
)

// Selection is the store an item is charged against and its price per kg
type Selection struct {
	Store models.Store `json:"store"`
	Price float64      `json:"price"`
}

// SelectStore picks the store to buy at. Missing and non-positive prices
// are ignored; nil means there is no usable price. The cheapest store wins
// (first in models.Stores on ties) unless the preferred store is within
// the tolerance band of the cheapest price, in which case it wins at its
// own price.
func SelectStore(prices models.Prices) *Selection {
	var cheapest *Selection
	for _, store := range models.Stores {
		price, ok := prices.Get(store)
		if !ok {
			continue
		}
		if cheapest == nil || price < cheapest.Price {
			cheapest = &Selection{Store: store, Price: price}
		}
	}

	if cheapest == nil {
		return nil
	}

	if preferred, ok := prices.Get(models.PreferredStore); ok && preferred <= cheapest.Price*models.PreferredTolerance {
		return &Selection{Store: models.PreferredStore, Price: preferred}
	}

	return cheapest
}

// ItemCost is the selected price times the quantity in kilograms. The
// selection is nil, and the cost zero, when the item has no usable price.
func ItemCost(item models.ShoppingItem) (float64, *Selection) {
	selection := SelectStore(item.Prices)
	if selection == nil {
		return 0, nil
	}
	return selection.Price * item.QuantityInKg(), selection
}

// TotalCost sums ItemCost over the list. The value is not rounded.
func TotalCost(items []models.ShoppingItem) float64 {
	var total float64
	for _, item := range items {
		cost, _ := ItemCost(item)
		total += cost
	}
	return total
}
