package types

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// CartLine is one SKU in the cart. Two lines are the same SKU iff their
// product id matches and their variant-id sets are equal as sets.
type CartLine struct {
	ProductID           string          `json:"product_id"`
	Variants            []Variant       `json:"variants,omitempty"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
}

// SKUKey builds the order-independent identity of this line.
func (l CartLine) SKUKey() string {
	ids := make([]string, 0, len(l.Variants))
	for _, v := range l.Variants {
		ids = append(ids, v.ID)
	}
	sort.Strings(ids)
	return l.ProductID + "|" + strings.Join(ids, ",")
}

// SameSKU reports whether two lines refer to the same product/variant
// combination regardless of variant ordering.
func (l CartLine) SameSKU(other CartLine) bool {
	return l.SKUKey() == other.SKUKey()
}

// VariantIDs returns the selected variant ids in input order.
func (l CartLine) VariantIDs() []string {
	ids := make([]string, 0, len(l.Variants))
	for _, v := range l.Variants {
		ids = append(ids, v.ID)
	}
	return ids
}

// LineTotal is quantity times the cached unit price.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// MergeLines collapses lines with identical SKU identity by summing their
// quantities. The first occurrence keeps its unit price and instructions.
func MergeLines(lines []CartLine) []CartLine {
	merged := make([]CartLine, 0, len(lines))
	index := map[string]int{}
	for _, line := range lines {
		key := line.SKUKey()
		if at, ok := index[key]; ok {
			merged[at].Quantity += line.Quantity
			continue
		}
		index[key] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// Subtotal sums the line totals of all lines.
func Subtotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total
}
