package types

import "github.com/shopspring/decimal"

func init() {
	// Upstream JSON carries plain numbers for every monetary field.
	decimal.MarshalJSONWithoutQuotes = true
}

// DisplayAmount rounds a monetary amount to two decimal places. The pricing
// core never rounds internally; only presentation surfaces call this.
func DisplayAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// ClampNonNegative floors an amount at zero.
func ClampNonNegative(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
