package planner

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/foxxcyber/shopsmart/internal/models"
)

// BuildView filters and sorts the list for display and annotates every row
// with its selected store and cost. The total covers the whole list, not
// just the rows matching the search.
func BuildView(items []models.ShoppingItem, query models.ListQuery) models.ShoppingListView {
	total := TotalCost(items)

	search := strings.ToLower(strings.TrimSpace(query.Search))
	rows := make([]models.ShoppingItemView, 0, len(items))
	for _, item := range items {
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}

		row := models.ShoppingItemView{ShoppingItem: item}
		if cost, selection := ItemCost(item); selection != nil {
			store := selection.Store
			price := selection.Price
			rounded := Round2(cost)
			row.SelectedStore = &store
			row.SelectedPrice = &price
			row.EstimatedCost = &rounded
		}
		rows = append(rows, row)
	}

	sortRows(rows, query.Sort)

	return models.ShoppingListView{
		Items:        rows,
		ItemCount:    len(rows),
		Total:        total,
		TotalRounded: Round2(total),
	}
}

func sortRows(rows []models.ShoppingItemView, order models.SortOrder) {
	// Italian collation keeps accented names next to their base letter
	collator := collate.New(language.Italian, collate.IgnoreCase)
	byName := func(a, b models.ShoppingItemView) bool {
		return collator.CompareString(a.Name, b.Name) < 0
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch order {
		case models.SortAlphabetical:
			return byName(a, b)
		case models.SortFreshness:
			if a.Freshness.Rank() != b.Freshness.Rank() {
				return a.Freshness.Rank() < b.Freshness.Rank()
			}
			return byName(a, b)
		default:
			if a.IsHighlighted != b.IsHighlighted {
				return a.IsHighlighted
			}
			return byName(a, b)
		}
	})
}
