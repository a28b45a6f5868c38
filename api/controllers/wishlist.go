package controllers

import (
	"context"
	"net/http"

	"github.com/hijabina/hijabina-backend/api/middleware"
	"github.com/hijabina/hijabina-backend/api/responses"
	"github.com/hijabina/hijabina-backend/api/validators"
	"github.com/hijabina/hijabina-backend/internal/wishlist"
	"github.com/hijabina/hijabina-backend/pkg/logger"
)

type Wishlist interface {
	Add(ctx context.Context, shopperID, productID string, extra map[string]any) (wishlist.Result, error)
	Remove(ctx context.Context, shopperID, productID string) (wishlist.Result, error)
	Items(ctx context.Context, shopperID string) ([]wishlist.Item, error)
}

type wishlistAddRequest struct {
	ProductID string         `json:"product_id" validate:"required"`
	Extra     map[string]any `json:"extra,omitempty"`
}

func WishlistFetch(store Wishlist, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := store.Items(r.Context(), middleware.ShopperIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wishlist.Result{Items: items})
	}
}

// WishlistAdd saves a product. Adding a saved product again reports added=false.
func WishlistAdd(store Wishlist, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body wishlistAddRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := store.Add(r.Context(), middleware.ShopperIDFromContext(r.Context()), body.ProductID, body.Extra)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func WishlistRemove(store Wishlist, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.RequireParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := store.Remove(r.Context(), middleware.ShopperIDFromContext(r.Context()), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
