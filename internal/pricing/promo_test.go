package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ovenlight/crumb-checkout/pkg/enums"
	"github.com/ovenlight/crumb-checkout/pkg/types"
)

func decPtr(value float64) *decimal.Decimal {
	d := decimal.NewFromFloat(value)
	return &d
}

func TestPromoDiscountNilPromo(t *testing.T) {
	t.Parallel()

	if got := PromoDiscount(nil, dec(100)); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
}

func TestPromoDiscountPercentage(t *testing.T) {
	t.Parallel()

	promo := &types.PromoCode{Code: "TEN", DiscountType: enums.DiscountTypePercentage, DiscountValue: dec(10)}
	if got := PromoDiscount(promo, dec(40)); !got.Equal(dec(4)) {
		t.Fatalf("expected 4, got %s", got)
	}
}

func TestPromoDiscountMaxCap(t *testing.T) {
	t.Parallel()

	promo := &types.PromoCode{
		Code:              "HALF",
		DiscountType:      enums.DiscountTypePercentage,
		DiscountValue:     dec(50),
		MaxDiscountAmount: decPtr(5),
	}
	if got := PromoDiscount(promo, dec(100)); !got.Equal(dec(5)) {
		t.Fatalf("expected cap at 5, got %s", got)
	}
}

func TestPromoDiscountMinOrderGate(t *testing.T) {
	t.Parallel()

	promo := &types.PromoCode{
		Code:           "BIG",
		DiscountType:   enums.DiscountTypeFixed,
		DiscountValue:  dec(5),
		MinOrderAmount: decPtr(20),
	}
	if got := PromoDiscount(promo, dec(10)); !got.IsZero() {
		t.Fatalf("expected zero under min order, got %s", got)
	}
	if got := PromoDiscount(promo, dec(20)); !got.Equal(dec(5)) {
		t.Fatalf("expected 5 at min order, got %s", got)
	}
}

func TestPromoDiscountFlatVariants(t *testing.T) {
	t.Parallel()

	for _, dt := range []enums.DiscountType{enums.DiscountTypeFixed, enums.DiscountTypeFixedAmount, enums.DiscountType("legacy_flat")} {
		promo := &types.PromoCode{Code: "FLAT", DiscountType: dt, DiscountValue: dec(3)}
		if got := PromoDiscount(promo, dec(30)); !got.Equal(dec(3)) {
			t.Fatalf("type %s: expected 3, got %s", dt, got)
		}
	}
}

func TestPromoDiscountFreeShippingAndBXGYYieldZero(t *testing.T) {
	t.Parallel()

	for _, dt := range []enums.DiscountType{enums.DiscountTypeFreeShipping, enums.DiscountTypeBXGY} {
		promo := &types.PromoCode{Code: "ZERO", DiscountType: dt, DiscountValue: dec(99)}
		if got := PromoDiscount(promo, dec(100)); !got.IsZero() {
			t.Fatalf("type %s: expected zero, got %s", dt, got)
		}
	}
}

func TestPromoDiscountClampedToOrderTotal(t *testing.T) {
	t.Parallel()

	promo := &types.PromoCode{Code: "HUGE", DiscountType: enums.DiscountTypeFixed, DiscountValue: dec(50)}
	if got := PromoDiscount(promo, dec(12)); !got.Equal(dec(12)) {
		t.Fatalf("expected clamp to order total, got %s", got)
	}
}

func TestPromoDiscountNeverNegative(t *testing.T) {
	t.Parallel()

	promo := &types.PromoCode{Code: "NEG", DiscountType: enums.DiscountTypeFixed, DiscountValue: dec(-4)}
	if got := PromoDiscount(promo, dec(10)); !got.IsZero() {
		t.Fatalf("expected zero for negative value, got %s", got)
	}
}
