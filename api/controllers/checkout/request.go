package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/ovenlight/crumb-checkout/internal/checkout"
	"github.com/ovenlight/crumb-checkout/internal/pricing"
	"github.com/ovenlight/crumb-checkout/pkg/bakery"
	"github.com/ovenlight/crumb-checkout/pkg/enums"
	"github.com/ovenlight/crumb-checkout/pkg/types"
)

// ItemPayload is one cart line on the wire. Clients either send the unit
// price they are displaying, or the base price plus full variant selections
// and let the server resolve the price. Either way the resolved price keeps
// local estimates coherent when the storefront is unreachable.
type ItemPayload struct {
	ProductID           string           `json:"product_id" validate:"required"`
	VariantIDs          []string         `json:"variant_ids,omitempty"`
	Variants            []VariantPayload `json:"variants,omitempty" validate:"dive"`
	Quantity            int              `json:"quantity" validate:"required,min=1"`
	BasePrice           decimal.Decimal  `json:"base_price"`
	UnitPrice           decimal.Decimal  `json:"unit_price"`
	SpecialInstructions string           `json:"special_instructions,omitempty"`
}

// VariantPayload is one selected variant with its pricing inputs.
type VariantPayload struct {
	ID               string              `json:"id" validate:"required"`
	Price            *decimal.Decimal    `json:"price,omitempty"`
	PriceModifier    *decimal.Decimal    `json:"price_modifier,omitempty"`
	PriceBehavior    enums.PriceBehavior `json:"price_behavior,omitempty"`
	OverridePriority *int                `json:"override_priority,omitempty"`
	StockStatus      enums.StockStatus   `json:"stock_status,omitempty"`
}

// AddressPayload mirrors the saved-address shape the storefront exposes.
type AddressPayload struct {
	ID          string             `json:"id,omitempty"`
	Coordinates *types.Coordinates `json:"coordinates,omitempty"`
	AreaID      *string            `json:"area_id,omitempty"`
	AreaFee     *decimal.Decimal   `json:"area_fee,omitempty"`
	DeliveryFee *decimal.Decimal   `json:"delivery_fee,omitempty"`
}

// BranchPayload identifies the serving branch.
type BranchPayload struct {
	ID          string             `json:"id" validate:"required"`
	Name        string             `json:"name,omitempty"`
	Coordinates *types.Coordinates `json:"coordinates,omitempty"`
}

// CalculateRequest is the calculation endpoint payload.
type CalculateRequest struct {
	Items        []ItemPayload       `json:"items" validate:"dive"`
	OrderType    enums.OrderType     `json:"order_type" validate:"required,oneof=delivery pickup"`
	Branch       *BranchPayload      `json:"branch,omitempty"`
	Address      *AddressPayload     `json:"address,omitempty"`
	GuestAddress *types.GuestAddress `json:"guest_address,omitempty"`
	IsGuest      bool                `json:"is_guest"`

	// CheckAvailability asks the server to gate the calculation on branch
	// availability first.
	CheckAvailability bool `json:"check_availability,omitempty"`
}

func (req CalculateRequest) toInput() checkout.CalculateInput {
	input := checkout.CalculateInput{
		Lines:             toCartLines(req.Items),
		OrderType:         req.OrderType,
		IsGuest:           req.IsGuest,
		GuestAddress:      req.GuestAddress,
		CheckAvailability: req.CheckAvailability,
	}
	if req.Branch != nil {
		input.Branch = &types.Branch{
			ID:          req.Branch.ID,
			Name:        req.Branch.Name,
			Coordinates: req.Branch.Coordinates,
		}
	}
	if req.Address != nil {
		input.Address = &types.Address{
			ID:          req.Address.ID,
			Coordinates: req.Address.Coordinates,
			AreaID:      req.Address.AreaID,
			AreaFee:     req.Address.AreaFee,
			DeliveryFee: req.Address.DeliveryFee,
		}
	}
	return input
}

// PromoRequest applies a promo code to the session.
type PromoRequest struct {
	Code    string `json:"code" validate:"required"`
	IsGuest bool   `json:"is_guest"`
}

// AvailabilityRequest asks whether branches can serve the given items.
type AvailabilityRequest struct {
	BranchID  string        `json:"branch_id,omitempty"`
	BranchIDs []string      `json:"branch_ids,omitempty"`
	Items     []ItemPayload `json:"items" validate:"required,min=1,dive"`
}

// PlaceOrderRequest is the order submission payload.
type PlaceOrderRequest struct {
	Items         []ItemPayload       `json:"items" validate:"required,min=1,dive"`
	OrderType     enums.OrderType     `json:"order_type" validate:"required,oneof=delivery pickup"`
	BranchID      string              `json:"branch_id" validate:"required"`
	AddressID     string              `json:"address_id,omitempty"`
	GuestAddress  *types.GuestAddress `json:"guest_address,omitempty"`
	Customer      CustomerPayload     `json:"customer" validate:"required"`
	PaymentMethod string              `json:"payment_method" validate:"required"`
	IsGuest       bool                `json:"is_guest"`
}

// CustomerPayload identifies the person placing the order.
type CustomerPayload struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

func (req PlaceOrderRequest) toInput() checkout.PlaceOrderInput {
	return checkout.PlaceOrderInput{
		Lines:     toCartLines(req.Items),
		OrderType: req.OrderType,
		BranchID:  req.BranchID,
		AddressID: req.AddressID,
		Customer: bakery.CustomerInfo{
			Name:  req.Customer.Name,
			Phone: req.Customer.Phone,
			Email: req.Customer.Email,
		},
		GuestAddress:  req.GuestAddress,
		PaymentMethod: req.PaymentMethod,
		IsGuest:       req.IsGuest,
	}
}

func toCartLines(items []ItemPayload) []types.CartLine {
	lines := make([]types.CartLine, 0, len(items))
	for _, item := range items {
		line := types.CartLine{
			ProductID:           item.ProductID,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
			SpecialInstructions: item.SpecialInstructions,
		}
		for _, variant := range item.Variants {
			line.Variants = append(line.Variants, types.Variant{
				ID:               variant.ID,
				ProductID:        item.ProductID,
				Price:            variant.Price,
				PriceModifier:    variant.PriceModifier,
				PriceBehavior:    variant.PriceBehavior,
				OverridePriority: variant.OverridePriority,
				StockStatus:      variant.StockStatus,
			})
		}
		for _, variantID := range item.VariantIDs {
			if !containsVariant(line.Variants, variantID) {
				line.Variants = append(line.Variants, types.Variant{ID: variantID, ProductID: item.ProductID})
			}
		}
		if line.UnitPrice.IsZero() && len(line.Variants) > 0 {
			line.UnitPrice = pricing.ResolveUnitPrice(item.BasePrice, line.Variants)
		}
		lines = append(lines, line)
	}
	return lines
}

func containsVariant(variants []types.Variant, id string) bool {
	for _, variant := range variants {
		if variant.ID == id {
			return true
		}
	}
	return false
}
