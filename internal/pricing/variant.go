package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ovenlight/crumb-checkout/pkg/types"
)

// ResolveUnitPrice computes the effective unit price for a product with the
// given variant selection.
//
// Override variants replace the base price outright; when several are
// selected the lowest override_priority wins (a missing priority sorts
// last). Add variants then sum onto the running price. The result never
// goes below zero and is not rounded; callers round only for display.
func ResolveUnitPrice(baseUnitPrice decimal.Decimal, variants []types.Variant) decimal.Decimal {
	if len(variants) == 0 {
		return baseUnitPrice
	}

	var overrides, adds []types.Variant
	for _, v := range variants {
		if v.PriceBehavior.IsOverride() {
			overrides = append(overrides, v)
		} else {
			adds = append(adds, v)
		}
	}

	result := baseUnitPrice
	if len(overrides) > 0 {
		sort.SliceStable(overrides, func(i, j int) bool {
			return overrides[i].Priority() < overrides[j].Priority()
		})
		result = overrides[0].Amount()
	}

	for _, v := range adds {
		result = result.Add(v.Amount())
	}

	return types.ClampNonNegative(result)
}
