package checkout

import (
	"github.com/ovenlight/crumb-checkout/pkg/enums"
	"github.com/ovenlight/crumb-checkout/pkg/types"
)

// promoSlot is the calculator's single source of truth for promo state.
// lastValidated outlives re-validation cycles so a free-shipping promo does
// not flicker off while a new validation round-trip is in flight.
type promoSlot struct {
	state         enums.PromoState
	active        *types.PromoCode
	lastValidated *types.PromoCode
	pendingCode   string
}

func (s *promoSlot) markPending(code string) {
	s.state = enums.PromoStatePending
	s.pendingCode = code
}

func (s *promoSlot) setValidated(promo *types.PromoCode) {
	s.state = enums.PromoStateValidated
	s.active = promo
	s.lastValidated = promo
	s.pendingCode = ""
}

// revert restores the slot after a failed validation: the previously
// validated promo, if any, stays applied.
func (s *promoSlot) revert() {
	s.pendingCode = ""
	if s.active != nil {
		s.state = enums.PromoStateValidated
		return
	}
	s.state = enums.PromoStateNone
}

// clear drops the promo entirely, stickiness included. Only an explicit
// user removal calls this.
func (s *promoSlot) clear() {
	s.state = enums.PromoStateNone
	s.active = nil
	s.lastValidated = nil
	s.pendingCode = ""
}

// code returns the code to send upstream with calculation requests.
func (s *promoSlot) code() string {
	if s.active != nil {
		return s.active.Code
	}
	return s.pendingCode
}

// State reports the slot lifecycle state.
func (s *promoSlot) State() enums.PromoState {
	if s.state == "" {
		return enums.PromoStateNone
	}
	return s.state
}
