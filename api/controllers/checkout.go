package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/api/middleware"
	"github.com/hijabina/hijabina-backend/api/responses"
	"github.com/hijabina/hijabina-backend/api/validators"
	"github.com/hijabina/hijabina-backend/internal/orders"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/logger"
)

// LocalOrders builds orders from the device cart and keeps the device history.
type LocalOrders interface {
	CreateOrder(ctx context.Context, shopperID string, extras orders.Extras) (*orders.Order, error)
	History(ctx context.Context, shopperID string) ([]orders.Order, error)
}

// RemoteCheckout turns an authenticated user's cart into an order.
type RemoteCheckout interface {
	Checkout(ctx context.Context, userID uuid.UUID, extras orders.Extras) (*orders.Order, error)
}

type checkoutRequest struct {
	CustomerName    string         `json:"customer_name" validate:"max=120"`
	CustomerPhone   string         `json:"customer_phone" validate:"max=32"`
	ShippingAddress string         `json:"shipping_address" validate:"max=500"`
	Notes           string         `json:"notes" validate:"max=500"`
	PromoCode       string         `json:"promo_code" validate:"max=32"`
	Meta            map[string]any `json:"meta,omitempty"`
}

func (c checkoutRequest) extras() orders.Extras {
	return orders.Extras{
		CustomerName:    validators.SanitizeString(c.CustomerName, 120),
		CustomerPhone:   validators.SanitizeString(c.CustomerPhone, 32),
		ShippingAddress: validators.SanitizeString(c.ShippingAddress, 500),
		Notes:           validators.SanitizeString(c.Notes, 500),
		PromoCode:       validators.SanitizeString(c.PromoCode, 32),
		Meta:            c.Meta,
	}
}

type orderHistoryResponse struct {
	Orders []orders.OrderDTO `json:"orders"`
}

// OrderCreate records an order for the shopper's local cart and clears it.
func OrderCreate(builder LocalOrders, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := builder.CreateOrder(r.Context(), middleware.ShopperIDFromContext(r.Context()), body.extras())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orders.ToDTO(*order))
	}
}

// OrderHistory lists the shopper's device order history, newest first.
func OrderHistory(builder LocalOrders, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := builder.History(r.Context(), middleware.ShopperIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]orders.OrderDTO, 0, len(history))
		for _, order := range history {
			out = append(out, orders.ToDTO(order))
		}
		responses.WriteSuccess(w, orderHistoryResponse{Orders: out})
	}
}

// MeCheckout checks out the authenticated user's remote cart.
func MeCheckout(svc RemoteCheckout, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), userID, body.extras())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orders.ToDTO(*order))
	}
}

// MeOrders pages through the authenticated user's stored orders.
func MeOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListForUser(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Silakan login terlebih dahulu")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func currentActor(r *http.Request) (orders.Actor, error) {
	id, err := currentUserID(r)
	if err != nil {
		return orders.Actor{}, err
	}
	return orders.Actor{UserID: id, Role: enums.UserRole(middleware.RoleFromContext(r.Context()))}, nil
}
