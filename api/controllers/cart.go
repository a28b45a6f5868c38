package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/api/middleware"
	"github.com/hijabina/hijabina-backend/api/responses"
	"github.com/hijabina/hijabina-backend/api/validators"
	"github.com/hijabina/hijabina-backend/internal/cart"
	"github.com/hijabina/hijabina-backend/internal/products"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/logger"
)

// LocalCart is the device-scoped cart surface used by the public cart routes.
type LocalCart interface {
	Add(ctx context.Context, shopperID string, in cart.AddInput) (cart.Result, error)
	Remove(ctx context.Context, shopperID, productID string) (cart.Result, error)
	UpdateQuantity(ctx context.Context, shopperID, productID string, qty int) (cart.Result, error)
	Clear(ctx context.Context, shopperID string) (cart.Result, error)
	Items(ctx context.Context, shopperID string) ([]cart.Item, error)
	Total(ctx context.Context, shopperID string) (cart.Totals, error)
}

// Catalog resolves the product a shopper adds so name and price come from
// the server, never from the request.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*products.ProductDTO, error)
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartFetch returns the shopper's cart lines and totals.
func CartFetch(store LocalCart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopperID := middleware.ShopperIDFromContext(r.Context())
		items, err := store.Items(r.Context(), shopperID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		totals, err := store.Total(r.Context(), shopperID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart.Result{Items: items, Totals: totals})
	}
}

// CartAddItem adds a catalog product to the shopper's cart.
func CartAddItem(store LocalCart, catalog Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body addItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := resolveAddInput(r.Context(), catalog, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := store.Add(r.Context(), middleware.ShopperIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartUpdateItem sets a line quantity. Zero removes the line.
func CartUpdateItem(store LocalCart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.RequireParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := store.UpdateQuantity(r.Context(), middleware.ShopperIDFromContext(r.Context()), productID, *body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartRemoveItem(store LocalCart, logg *logger.Logger) http.HandlerFunc {
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

func CartClear(store LocalCart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := store.Clear(r.Context(), middleware.ShopperIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// resolveAddInput looks the product up in the catalog. Unknown ids are
// reported as not found.
func resolveAddInput(ctx context.Context, catalog Catalog, body addItemRequest) (cart.AddInput, error) {
	id, err := uuid.Parse(strings.TrimSpace(body.ProductID))
	if err != nil {
		return cart.AddInput{}, pkgerrors.New(pkgerrors.CodeNotFound, cart.MsgNotFound)
	}
	product, err := catalog.GetProduct(ctx, id)
	if err != nil {
		return cart.AddInput{}, err
	}
	extra := map[string]any{"category": product.Category}
	if product.ImageURL != nil {
		extra["image"] = *product.ImageURL
	}
	return cart.AddInput{
		ProductID: product.ID.String(),
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  body.Quantity,
		Extra:     extra,
	}, nil
}
