package delivery

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/ovenlight/crumb-checkout/pkg/enums"
	"github.com/ovenlight/crumb-checkout/pkg/types"
)

// Distance tiers, ascending by band edge (km -> fee in currency units).
var distanceTiers = []struct {
	maxKm float64
	fee   decimal.Decimal
}{
	{2, decimal.NewFromFloat(1.0)},
	{5, decimal.NewFromFloat(2.0)},
	{10, decimal.NewFromFloat(3.0)},
	{20, decimal.NewFromFloat(4.5)},
	{35, decimal.NewFromFloat(6.0)},
}

var beyondTiersFee = decimal.NewFromFloat(8.0)

// Order-value default tier, used when neither the server, the area, nor the
// distance calculation produced a fee.
var (
	orderValueFreeAt = decimal.NewFromInt(100)
	orderValueMidAt  = decimal.NewFromInt(50)
	orderValueMidFee = decimal.NewFromFloat(1.5)
	orderValueFee    = decimal.NewFromFloat(3.0)
)

// DefaultFreeShippingSubtotal is the business threshold above which delivery
// is free regardless of promos.
var DefaultFreeShippingSubtotal = decimal.NewFromInt(75)

// Context bundles everything the fee chain consults.
type Context struct {
	OrderType enums.OrderType

	// ServerFee is the raw delivery fee the backend returned; trusted first
	// when non-zero.
	ServerFee decimal.Decimal

	Address  *types.Address
	Branch   *types.Branch
	Subtotal decimal.Decimal

	// ActivePromo is the currently applied promo; LastValidatedPromo is the
	// retained copy that keeps free shipping sticky across recalculation;
	// BackendPromo is the promo_details the calculate response carried.
	ActivePromo        *types.PromoCode
	LastValidatedPromo *types.PromoCode
	BackendPromo       *types.PromoCode

	// FreeShippingSubtotal overrides the default order-value threshold when
	// positive.
	FreeShippingSubtotal decimal.Decimal
}

// Quote is the chain's outcome: the final fee and the amount a free-shipping
// promo waived (zero when no such promo is active).
type Quote struct {
	Fee    decimal.Decimal
	Waived decimal.Decimal
}

// Resolve selects the delivery fee through the ordered fallback chain:
// server fee, area/address flat fee, distance tiers, order-value default;
// then applies the free-shipping promo override and the order-value
// threshold. Pickup orders skip the chain entirely.
func Resolve(ctx Context) Quote {
	if ctx.OrderType != enums.OrderTypeDelivery {
		return Quote{Fee: decimal.Zero, Waived: decimal.Zero}
	}

	baseline := ctx.ServerFee
	if !baseline.IsPositive() {
		baseline = ctx.Address.FlatFee()
	}
	if !baseline.IsPositive() {
		baseline = distanceFee(ctx.Address, ctx.Branch)
	}
	if !baseline.IsPositive() {
		baseline = orderValueDefault(ctx.Subtotal)
	}

	quote := Quote{Fee: baseline, Waived: decimal.Zero}

	if freeShippingActive(ctx) {
		quote.Waived = baseline
		quote.Fee = decimal.Zero
	}

	threshold := ctx.FreeShippingSubtotal
	if !threshold.IsPositive() {
		threshold = DefaultFreeShippingSubtotal
	}
	if ctx.Subtotal.GreaterThanOrEqual(threshold) {
		quote.Fee = decimal.Zero
	}

	return quote
}

// DistanceKm computes the great-circle distance between two coordinates,
// rounded to two decimals.
func DistanceKm(from, to types.Coordinates) float64 {
	const earthRadiusKm = 6371.0

	lat1 := from.Latitude * math.Pi / 180
	lat2 := to.Latitude * math.Pi / 180
	dLat := (to.Latitude - from.Latitude) * math.Pi / 180
	dLon := (to.Longitude - from.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(earthRadiusKm*c*100) / 100
}

// FeeForDistance maps a rounded distance to its tier fee.
func FeeForDistance(km float64) decimal.Decimal {
	for _, tier := range distanceTiers {
		if km <= tier.maxKm {
			return tier.fee
		}
	}
	return beyondTiersFee
}

func distanceFee(address *types.Address, branch *types.Branch) decimal.Decimal {
	if address == nil || address.Coordinates == nil || branch == nil || branch.Coordinates == nil {
		return decimal.Zero
	}
	return FeeForDistance(DistanceKm(*address.Coordinates, *branch.Coordinates))
}

func orderValueDefault(subtotal decimal.Decimal) decimal.Decimal {
	switch {
	case subtotal.GreaterThanOrEqual(orderValueFreeAt):
		return decimal.Zero
	case subtotal.GreaterThanOrEqual(orderValueMidAt):
		return orderValueMidFee
	default:
		return orderValueFee
	}
}

func freeShippingActive(ctx Context) bool {
	return ctx.ActivePromo.IsFreeShipping() ||
		ctx.LastValidatedPromo.IsFreeShipping() ||
		ctx.BackendPromo.IsFreeShipping()
}
