package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/hijabina/hijabina-backend/pkg/config"
)

// CORS returns middleware that applies the storefront's allowed origin policy.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", ShopperHeader, "X-Requested-With"},
		ExposedHeaders:   []string{"X-Hijabina-Token", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
