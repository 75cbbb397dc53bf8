package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/ovenlight/crumb-checkout/pkg/enums"
	"github.com/ovenlight/crumb-checkout/pkg/types"
)

var oneHundred = decimal.NewFromInt(100)

// PromoDiscount computes the monetary discount of a promo against an order
// total.
//
// Free-shipping promos yield zero here: shipping relief belongs to the
// delivery fee chain. BXGY promos also yield zero; item-level matching is
// deferred to the backend. Unknown types fall back to a flat discount for
// backward compatibility.
func PromoDiscount(promo *types.PromoCode, orderTotal decimal.Decimal) decimal.Decimal {
	if promo == nil {
		return decimal.Zero
	}

	switch promo.DiscountType {
	case enums.DiscountTypeFreeShipping, enums.DiscountTypeBXGY:
		return decimal.Zero
	}

	if promo.MinOrderAmount != nil && orderTotal.LessThan(*promo.MinOrderAmount) {
		return decimal.Zero
	}

	var discount decimal.Decimal
	if promo.DiscountType == enums.DiscountTypePercentage {
		discount = orderTotal.Mul(promo.DiscountValue).Div(oneHundred)
	} else {
		discount = promo.DiscountValue
	}

	if promo.MaxDiscountAmount != nil && discount.GreaterThan(*promo.MaxDiscountAmount) {
		discount = *promo.MaxDiscountAmount
	}
	if discount.GreaterThan(orderTotal) {
		discount = orderTotal
	}
	return types.ClampNonNegative(discount)
}
