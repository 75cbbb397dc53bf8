package types

import "github.com/shopspring/decimal"

// CalculatedItem is one priced line inside an order calculation.
type CalculatedItem struct {
	ProductID  string          `json:"product_id"`
	VariantIDs []string        `json:"variant_ids,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// OrderCalculation is the calculator's committed output. It is replaced
// wholesale on every recalculation, never patched in place.
type OrderCalculation struct {
	Items          []CalculatedItem `json:"items"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	DeliveryFee    decimal.Decimal  `json:"delivery_fee"`
	TaxAmount      decimal.Decimal  `json:"tax_amount"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	PointsEarned   int              `json:"points_earned"`
	PromoDetails   *PromoCode       `json:"promo_details,omitempty"`

	// WaivedDeliveryFee is the client-only amount a free-shipping promo
	// zeroed out, kept apart from DiscountAmount so the UI can render
	// "shipping $X -> free".
	WaivedDeliveryFee decimal.Decimal `json:"waived_delivery_fee"`

	// Estimated marks a best-effort local calculation produced after an
	// upstream failure.
	Estimated bool `json:"estimated,omitempty"`
}

// RederiveTotal recomputes TotalAmount from its components. Callers patching
// any component field must invoke this before committing.
func (o *OrderCalculation) RederiveTotal() {
	o.TotalAmount = o.Subtotal.Add(o.DeliveryFee).Add(o.TaxAmount).Sub(o.DiscountAmount)
}

// ConsistentTotal reports whether TotalAmount matches its components.
func (o *OrderCalculation) ConsistentTotal() bool {
	derived := o.Subtotal.Add(o.DeliveryFee).Add(o.TaxAmount).Sub(o.DiscountAmount)
	return derived.Equal(o.TotalAmount)
}

// ZeroCalculation is the committed result for an empty cart.
func ZeroCalculation() *OrderCalculation {
	return &OrderCalculation{
		Items:             []CalculatedItem{},
		Subtotal:          decimal.Zero,
		DeliveryFee:       decimal.Zero,
		TaxAmount:         decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       decimal.Zero,
		WaivedDeliveryFee: decimal.Zero,
	}
}
