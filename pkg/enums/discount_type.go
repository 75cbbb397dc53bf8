package enums

// DiscountType classifies how a promo code's discount value is interpreted.
type DiscountType string

const (
	DiscountTypePercentage   DiscountType = "percentage"
	DiscountTypeFixed        DiscountType = "fixed"
	DiscountTypeFixedAmount  DiscountType = "fixed_amount"
	DiscountTypeFreeShipping DiscountType = "free_shipping"
	DiscountTypeBXGY         DiscountType = "bxgy"
)

// String implements fmt.Stringer.
func (d DiscountType) String() string {
	return string(d)
}

// IsFreeShipping reports whether this promo zeroes the delivery fee instead
// of producing a monetary discount line.
func (d DiscountType) IsFreeShipping() bool {
	return d == DiscountTypeFreeShipping
}

// IsFlat reports whether the discount value applies as a flat amount.
// Unknown types fall back to flat for backward compatibility with older
// backend promo payloads.
func (d DiscountType) IsFlat() bool {
	switch d {
	case DiscountTypePercentage, DiscountTypeFreeShipping, DiscountTypeBXGY:
		return false
	default:
		return true
	}
}
