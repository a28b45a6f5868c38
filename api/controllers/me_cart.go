package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/api/responses"
	"github.com/hijabina/hijabina-backend/api/validators"
	"github.com/hijabina/hijabina-backend/internal/cart"
	"github.com/hijabina/hijabina-backend/internal/remotecart"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/logger"
)

const cartStreamEvent = "cart"

// RemoteCart is the authenticated cart surface.
type RemoteCart interface {
	Add(ctx context.Context, userID uuid.UUID, in cart.AddInput) (cart.Result, error)
	Remove(ctx context.Context, userID uuid.UUID, productID string) (cart.Result, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, productID string, qty int) (cart.Result, error)
	Cart(ctx context.Context, userID uuid.UUID) (cart.Result, error)
	Watch(ctx context.Context, identities <-chan remotecart.Identity) <-chan remotecart.Snapshot
}

// IdentitySource follows a user's login state for the lifetime of ctx.
type IdentitySource func(ctx context.Context, userID uuid.UUID) (<-chan remotecart.Identity, error)

func MeCartFetch(svc RemoteCart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Cart(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func MeCartAddItem(svc RemoteCart, catalog Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
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
		result, err := svc.Add(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func MeCartUpdateItem(svc RemoteCart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
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
		result, err := svc.UpdateQuantity(r.Context(), userID, productID, *body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func MeCartRemoveItem(svc RemoteCart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.RequireParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Remove(r.Context(), userID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MeCartStream streams a rendered view of every cart snapshot as a
// server-sent event. The stream follows logins and logouts of the user and
// ends when the client disconnects.
func MeCartStream(svc RemoteCart, identities IdentitySource, heartbeat time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		ids, err := identities(ctx, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "follow identity"))
			return
		}

		stream, err := responses.OpenEventStream(w)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open event stream"))
			return
		}

		if heartbeat <= 0 {
			heartbeat = 25 * time.Second
		}
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		snapshots := svc.Watch(ctx, ids)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := stream.Heartbeat(); err != nil {
					return
				}
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				if snap.Err != nil && logg != nil {
					logg.Warn(logg.WithField(ctx, "error", snap.Err.Error()), "cart.stream.snapshot_failed")
				}
				if err := stream.Send(cartStreamEvent, remotecart.Render(snap)); err != nil {
					return
				}
			}
		}
	}
}
