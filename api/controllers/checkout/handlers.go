package checkout

import (
	"errors"
	"net/http"

	"github.com/ovenlight/crumb-checkout/api/middleware"
	"github.com/ovenlight/crumb-checkout/api/responses"
	"github.com/ovenlight/crumb-checkout/api/validators"
	checkoutsvc "github.com/ovenlight/crumb-checkout/internal/checkout"
	"github.com/ovenlight/crumb-checkout/pkg/enums"
	pkgerrors "github.com/ovenlight/crumb-checkout/pkg/errors"
	"github.com/ovenlight/crumb-checkout/pkg/logger"
	"github.com/ovenlight/crumb-checkout/pkg/types"
)

// CalculationResponse wraps a committed calculation with session promo
// state, so the client can render both from one round-trip.
type CalculationResponse struct {
	Calculation *types.OrderCalculation `json:"calculation"`
	PromoState  enums.PromoState        `json:"promo_state"`
	Deferred    bool                    `json:"deferred,omitempty"`
}

func sessionCalculator(r *http.Request, registry *checkoutsvc.Registry) (*checkoutsvc.Calculator, error) {
	if registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable")
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session context missing")
	}
	return registry.Session(sessionID)
}

// Calculate recomputes the session's order. A response superseded by a newer
// request, or produced as a local estimate after an upstream failure, still
// renders as success: the committed calculation is returned either way.
func Calculate(registry *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calc, err := sessionCalculator(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload CalculateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := calc.Calculate(r.Context(), payload.toInput())
		response := CalculationResponse{Calculation: result, PromoState: calc.PromoState()}

		switch {
		case err == nil:
			responses.WriteSuccess(w, response)
		case errors.Is(err, checkoutsvc.ErrAwaitingBranch):
			response.Deferred = true
			responses.WriteSuccess(w, response)
		case errors.Is(err, checkoutsvc.ErrStale):
			responses.WriteSuccess(w, response)
		case pkgerrors.IsCode(err, pkgerrors.CodeDependency) && result != nil:
			// The estimate carries its own flag; the client renders it with
			// an "estimated" badge rather than an error screen.
			responses.WriteSuccess(w, response)
		default:
			responses.WriteError(r.Context(), logg, w, err)
		}
	}
}

// PromoApply validates and installs a promo code on the session.
func PromoApply(registry *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calc, err := sessionCalculator(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload PromoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promo, err := calc.ApplyPromo(r.Context(), payload.Code, payload.IsGuest)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"promo":       promo,
			"promo_state": calc.PromoState(),
		})
	}
}

// PromoRemove clears the session promo, free-shipping stickiness included.
func PromoRemove(registry *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calc, err := sessionCalculator(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		calc.RemovePromo()
		responses.WriteSuccess(w, map[string]any{
			"promo_state": calc.PromoState(),
		})
	}
}

// BranchAvailability checks whether one or more branches can serve the
// submitted items.
func BranchAvailability(registry *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calc, err := sessionCalculator(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AvailabilityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := toCartLines(payload.Items)

		if len(payload.BranchIDs) > 0 {
			verdicts, err := calc.CheckBranches(r.Context(), payload.BranchIDs, lines)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, map[string]any{"branches": verdicts})
			return
		}

		verdict, err := calc.CheckAvailability(r.Context(), payload.BranchID, lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, verdict)
	}
}

// PlaceOrder submits the session's order to the storefront.
func PlaceOrder(registry *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calc, err := sessionCalculator(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload PlaceOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := calc.PlaceOrder(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The session is spent once its order lands.
		if sessionID := middleware.SessionIDFromContext(r.Context()); sessionID != "" {
			registry.Drop(sessionID)
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"order": order})
	}
}
