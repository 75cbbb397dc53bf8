package types

import (
	"github.com/shopspring/decimal"

	"github.com/ovenlight/crumb-checkout/pkg/enums"
)

// Product is the backend's catalog record, immutable from this side.
type Product struct {
	ID         string           `json:"id"`
	Name       string           `json:"name,omitempty"`
	BasePrice  decimal.Decimal  `json:"base_price"`
	SalePrice  *decimal.Decimal `json:"sale_price,omitempty"`
	FinalPrice decimal.Decimal  `json:"final_price"`
}

// Variant is a selectable product option. A cart line may carry zero, one,
// or many variants at once.
type Variant struct {
	ID               string              `json:"id"`
	ProductID        string              `json:"product_id"`
	Price            *decimal.Decimal    `json:"price,omitempty"`
	PriceModifier    *decimal.Decimal    `json:"price_modifier,omitempty"`
	PriceBehavior    enums.PriceBehavior `json:"price_behavior,omitempty"`
	OverridePriority *int                `json:"override_priority,omitempty"`
	StockStatus      enums.StockStatus   `json:"stock_status,omitempty"`
}

// Amount returns the variant's monetary contribution: price when populated,
// otherwise price_modifier, otherwise zero.
func (v Variant) Amount() decimal.Decimal {
	if v.Price != nil {
		return *v.Price
	}
	if v.PriceModifier != nil {
		return *v.PriceModifier
	}
	return decimal.Zero
}

// Priority returns the override ordering rank. A missing priority sorts
// after every explicit one.
func (v Variant) Priority() int {
	if v.OverridePriority == nil {
		return int(^uint(0) >> 1)
	}
	return *v.OverridePriority
}
