package enums

import "fmt"

// StockStatus reflects the purchasability of a product variant.
type StockStatus string

const (
	StockStatusInStock     StockStatus = "in_stock"
	StockStatusLowStock    StockStatus = "low_stock"
	StockStatusLimited     StockStatus = "limited"
	StockStatusOutOfStock  StockStatus = "out_of_stock"
	StockStatusUnavailable StockStatus = "unavailable"
)

var validStockStatuses = []StockStatus{
	StockStatusInStock,
	StockStatusLowStock,
	StockStatusLimited,
	StockStatusOutOfStock,
	StockStatusUnavailable,
}

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s StockStatus) IsValid() bool {
	for _, candidate := range validStockStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Purchasable reports whether a variant in this state may be added to an
// order. Low and limited stock still sell; the backend is authoritative for
// exact remaining quantities.
func (s StockStatus) Purchasable() bool {
	switch s {
	case StockStatusOutOfStock, StockStatusUnavailable:
		return false
	default:
		return true
	}
}

// ParseStockStatus converts raw input into a StockStatus.
func ParseStockStatus(value string) (StockStatus, error) {
	for _, candidate := range validStockStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock status %q", value)
}
