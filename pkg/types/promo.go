package types

import (
	"github.com/shopspring/decimal"

	"github.com/ovenlight/crumb-checkout/pkg/enums"
)

// PromoCode is a validated promo descriptor held in session state. Usage
// constraints are display-only; the backend enforces them.
type PromoCode struct {
	Code              string             `json:"code"`
	DiscountType      enums.DiscountType `json:"discount_type"`
	DiscountValue     decimal.Decimal    `json:"discount_value"`
	MinOrderAmount    *decimal.Decimal   `json:"min_order_amount,omitempty"`
	MaxDiscountAmount *decimal.Decimal   `json:"max_discount_amount,omitempty"`
	UsageLimit        *int               `json:"usage_limit,omitempty"`
	UsageCount        *int               `json:"usage_count,omitempty"`
	Description       string             `json:"description,omitempty"`
}

// IsFreeShipping reports whether this promo waives the delivery fee.
func (p *PromoCode) IsFreeShipping() bool {
	return p != nil && p.DiscountType.IsFreeShipping()
}
