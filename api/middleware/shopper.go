package middleware

import (
	"net/http"
	"strings"

	"github.com/hijabina/hijabina-backend/api/responses"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/logger"
)

// ShopperHeader carries the device-scoped shopper id for local cart routes.
const ShopperHeader = "X-Shopper-Id"

const maxShopperIDLen = 128

// Shopper requires a usable X-Shopper-Id header and stores it in the context.
func Shopper(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shopperID := strings.TrimSpace(r.Header.Get(ShopperHeader))
			if !validShopperID(shopperID) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Header X-Shopper-Id wajib diisi").
					WithDetails(map[string]any{"field": ShopperHeader}))
				return
			}

			ctx := WithShopperID(r.Context(), shopperID)
			if logg != nil {
				ctx = logg.WithShopperID(ctx, shopperID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validShopperID keeps ids safe to embed in storage keys.
func validShopperID(id string) bool {
	if id == "" || len(id) > maxShopperIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
