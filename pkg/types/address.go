package types

import "github.com/shopspring/decimal"

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AreaID    *string `json:"area_id,omitempty"`
}

// Address is a saved delivery address selected (never mutated) during
// checkout.
type Address struct {
	ID          string           `json:"id"`
	Line1       string           `json:"line1,omitempty"`
	City        string           `json:"city,omitempty"`
	Coordinates *Coordinates     `json:"coordinates,omitempty"`
	AreaID      *string          `json:"area_id,omitempty"`
	AreaFee     *decimal.Decimal `json:"area_delivery_fee,omitempty"`
	DeliveryFee *decimal.Decimal `json:"delivery_fee,omitempty"`
}

// FlatFee returns the address-level fee when set and non-zero, otherwise the
// area-level fee, otherwise zero.
func (a *Address) FlatFee() decimal.Decimal {
	if a == nil {
		return decimal.Zero
	}
	if a.DeliveryFee != nil && a.DeliveryFee.IsPositive() {
		return *a.DeliveryFee
	}
	if a.AreaFee != nil && a.AreaFee.IsPositive() {
		return *a.AreaFee
	}
	return decimal.Zero
}

// GuestAddress describes a delivery destination for guest checkout.
type GuestAddress struct {
	Line1       string       `json:"line1"`
	City        string       `json:"city,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Branch is a physical bakery location, used for distance fees and
// availability checks.
type Branch struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}
