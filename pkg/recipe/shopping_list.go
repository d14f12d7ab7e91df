package recipe

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"foodgram/domain"
)

type shoppingKey struct {
	name string
	unit string
}

// BuildShoppingList merges line items by (ingredient name, measurement unit)
// and sums their amounts. Output is ordered by name, then unit.
func BuildShoppingList(lines []domain.ShoppingLine) []domain.ShoppingListItem {
	totals := make(map[shoppingKey]int, len(lines))
	for _, line := range lines {
		totals[shoppingKey{name: line.Name, unit: line.MeasurementUnit}] += line.Amount
	}

	items := make([]domain.ShoppingListItem, 0, len(totals))
	for key, amount := range totals {
		items = append(items, domain.ShoppingListItem{
			Name:            key.name,
			MeasurementUnit: key.unit,
			Amount:          amount,
		})
	}

	slices.SortFunc(items, func(a, b domain.ShoppingListItem) int {
		return cmp.Or(
			strings.Compare(a.Name, b.Name),
			strings.Compare(a.MeasurementUnit, b.MeasurementUnit),
		)
	})
	return items
}

// RenderShoppingList writes the plain text report: a header, a blank line,
// then "{n}. {name} ({unit}) - {amount}" per item.
func RenderShoppingList(items []domain.ShoppingListItem) []byte {
	var buf bytes.Buffer
	buf.WriteString(domain.ShoppingListHeader)
	buf.WriteString("\n\n")
	for i, item := range items {
		fmt.Fprintf(&buf, "%d. %s (%s) - %d\n", i+1, item.Name, item.MeasurementUnit, item.Amount)
	}
	return buf.Bytes()
}
