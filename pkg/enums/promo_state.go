package enums

// PromoState tracks the lifecycle of the single promo slot owned by the
// order calculator.
type PromoState string

const (
	PromoStateNone      PromoState = "none"
	PromoStatePending   PromoState = "pending_validation"
	PromoStateValidated PromoState = "validated"
)

// String implements fmt.Stringer.
func (p PromoState) String() string {
	return string(p)
}
