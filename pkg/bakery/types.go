package bakery

import (
	"github.com/shopspring/decimal"

	"github.com/ovenlight/crumb-checkout/pkg/enums"
	"github.com/ovenlight/crumb-checkout/pkg/types"
)

// envelope is the standard upstream response wrapper.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CalculateItem is one cart line in the calculate payload. VariantID carries
// the first selection for older backend revisions; VariantIDs is the full
// multi-select set.
type CalculateItem struct {
	ProductID           string   `json:"product_id"`
	VariantID           *string  `json:"variant_id"`
	VariantIDs          []string `json:"variant_ids,omitempty"`
	Quantity            int      `json:"quantity"`
	SpecialInstructions string   `json:"special_instructions,omitempty"`
}

// CalculateRequest is the payload for the calculate endpoint.
type CalculateRequest struct {
	Items                []CalculateItem     `json:"items"`
	DeliveryAddressID    *string             `json:"delivery_address_id,omitempty"`
	BranchID             *string             `json:"branch_id,omitempty"`
	OrderType            enums.OrderType     `json:"order_type"`
	PromoCode            *string             `json:"promo_code,omitempty"`
	IsGuest              bool                `json:"is_guest"`
	DeliveryCoordinates  *types.Coordinates  `json:"delivery_coordinates,omitempty"`
	GuestDeliveryAddress *types.GuestAddress `json:"guest_delivery_address,omitempty"`
}

// CalculateData is the calculate endpoint's data payload. Fields the backend
// omits decode to zero and are patched locally.
type CalculateData struct {
	Items          []CalculatedLine `json:"items"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	DeliveryFee    decimal.Decimal  `json:"delivery_fee"`
	TaxAmount      decimal.Decimal  `json:"tax_amount"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	PointsEarned   int              `json:"points_earned"`
	PromoDetails   *types.PromoCode `json:"promo_details,omitempty"`
}

// CalculatedLine is one priced line in the calculate response.
type CalculatedLine struct {
	ProductID  string          `json:"product_id"`
	VariantIDs []string        `json:"variant_ids,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// PromoValidationRequest asks the backend to validate a promo code against
// the current order total.
type PromoValidationRequest struct {
	Code       string          `json:"code"`
	OrderTotal decimal.Decimal `json:"order_total"`
	IsGuest    bool            `json:"is_guest"`
}

// promoValidationData tolerates both field names the backend has used for
// the validated promo payload.
type promoValidationData struct {
	Promo     *types.PromoCode `json:"promo,omitempty"`
	PromoCode *types.PromoCode `json:"promo_code,omitempty"`
}

func (d promoValidationData) promo() *types.PromoCode {
	if d.Promo != nil {
		return d.Promo
	}
	return d.PromoCode
}

// AvailabilityItem identifies a product/variant/quantity to verify.
type AvailabilityItem struct {
	ProductID string  `json:"product_id"`
	VariantID *string `json:"variant_id"`
	Quantity  int     `json:"quantity"`
}

// AvailabilityRequest checks one or more branches for the given items.
type AvailabilityRequest struct {
	BranchID  *string            `json:"branch_id,omitempty"`
	BranchIDs []string           `json:"branch_ids,omitempty"`
	Items     []AvailabilityItem `json:"items"`
}

// BranchIssue is the structured unavailability record the backend may attach
// per item. Free-text messages remain the fallback.
type BranchIssue struct {
	ProductID string  `json:"product_id"`
	VariantID *string `json:"variant_id,omitempty"`
	Reason    string  `json:"reason,omitempty"`
	Remaining *int    `json:"remaining,omitempty"`
}

// BranchAvailability is one branch's verdict.
type BranchAvailability struct {
	BranchID     string             `json:"branch_id"`
	Status       enums.BranchStatus `json:"status"`
	MinRemaining *int               `json:"min_remaining,omitempty"`
	Issues       []BranchIssue      `json:"issues,omitempty"`
	Message      string             `json:"message,omitempty"`
}

// AvailabilityData is the availability endpoint's payload.
type AvailabilityData struct {
	Branches []BranchAvailability `json:"branches"`
}

// CreateOrderItem carries a resolved line for order creation.
type CreateOrderItem struct {
	ProductID           string          `json:"product_id"`
	VariantIDs          []string        `json:"variant_ids,omitempty"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
}

// CustomerInfo identifies the person placing the order.
type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// ExpectedTotals lets the backend cross-check the client's committed
// calculation before accepting the order.
type ExpectedTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// CreateOrderRequest is the full order submission payload.
type CreateOrderRequest struct {
	Items                []CreateOrderItem   `json:"items"`
	Customer             CustomerInfo        `json:"customer"`
	BranchID             string              `json:"branch_id"`
	OrderType            enums.OrderType     `json:"order_type"`
	DeliveryAddressID    *string             `json:"delivery_address_id,omitempty"`
	GuestDeliveryAddress *types.GuestAddress `json:"guest_delivery_address,omitempty"`
	PaymentMethod        string              `json:"payment_method"`
	PromoCode            *string             `json:"promo_code,omitempty"`
	IsGuest              bool                `json:"is_guest"`
	ExpectedTotals       ExpectedTotals      `json:"expected_totals"`
}

// OrderData is the created-order payload.
type OrderData struct {
	Order CreatedOrder `json:"order"`
}

// CreatedOrder is the backend's order record subset the client needs.
type CreatedOrder struct {
	ID          string          `json:"id"`
	OrderNumber string          `json:"order_number"`
	Status      string          `json:"status,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
