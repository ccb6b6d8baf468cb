package models

import (
	"errors"
	"fmt"
	"math"
)

var ErrUnknownStore = errors.New("unknown store")

// Store identifies one of the retailers prices are tracked for
type Store string

const (
	StoreFamila      Store = "famila"
	StoreLidl        Store = "lidl"
	StorePrimoprezzo Store = "primoprezzo"
)

// Stores is the fixed iteration order. Ties at the cheapest price go to the
// store that appears first here.
var Stores = []Store{StoreFamila, StoreLidl, StorePrimoprezzo}

// PreferredStore is chosen over the strict cheapest store while its price
// stays within PreferredTolerance of the cheapest one.
const (
	PreferredStore     = StoreFamila
	PreferredTolerance = 1.20
)

// IsValid reports whether s is one of the known stores
func (s Store) IsValid() bool {
	for _, known := range Stores {
		if s == known {
			return true
		}
	}
	return false
}

// Prices holds a price per kilogram for each store that has one.
// Missing stores have no price data.
type Prices map[Store]float64

// Get returns the usable price for a store. Non-positive and non-finite
// values count as missing.
func (p Prices) Get(store Store) (float64, bool) {
	price, ok := p[store]
	if !ok || price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return price, true
}

// Clone returns an independent copy; nil stays nil
func (p Prices) Clone() Prices {
	if p == nil {
		return nil
	}
	out := make(Prices, len(p))
	for store, price := range p {
		out[store] = price
	}
	return out
}

// Validate rejects keys outside the known store set
func (p Prices) Validate() error {
	for store := range p {
		if !store.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnknownStore, store)
		}
	}
	return nil
}

// Equal compares two price maps, treating nil and empty as the same
func (p Prices) Equal(other Prices) bool {
	if len(p) != len(other) {
		return false
	}
	for store, price := range p {
		if otherPrice, ok := other[store]; !ok || otherPrice != price {
			return false
		}
	}
	return true
}
