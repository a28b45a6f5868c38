package controllers

import (
	"net/http"

	"github.com/hijabina/hijabina-backend/api/middleware"
	"github.com/hijabina/hijabina-backend/api/responses"
	"github.com/hijabina/hijabina-backend/api/validators"
	"github.com/hijabina/hijabina-backend/internal/promo"
	"github.com/hijabina/hijabina-backend/pkg/logger"
)

type promoValidateRequest struct {
	Code string `json:"code" validate:"required"`
	// Subtotal defaults to the subtotal of the shopper's local cart.
	Subtotal *int64 `json:"subtotal,omitempty" validate:"omitempty,min=0"`
}

// PromoValidate evaluates a promo code. An unusable code is a normal
// response with valid=false, not an error.
func PromoValidate(store LocalCart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body promoValidateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var subtotal int64
		if body.Subtotal != nil {
			subtotal = *body.Subtotal
		} else {
			totals, err := store.Total(r.Context(), middleware.ShopperIDFromContext(r.Context()))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			subtotal = totals.Subtotal
		}

		responses.WriteSuccess(w, promo.Validate(body.Code, subtotal))
	}
}
