package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hijabina/hijabina-backend/api/controllers"
	"github.com/hijabina/hijabina-backend/api/middleware"
	"github.com/hijabina/hijabina-backend/internal/auth"
	"github.com/hijabina/hijabina-backend/internal/dashboard"
	"github.com/hijabina/hijabina-backend/internal/orders"
	"github.com/hijabina/hijabina-backend/internal/products"
	"github.com/hijabina/hijabina-backend/internal/remotecart"
	"github.com/hijabina/hijabina-backend/pkg/auth/session"
	"github.com/hijabina/hijabina-backend/pkg/config"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	"github.com/hijabina/hijabina-backend/pkg/logger"
	"github.com/hijabina/hijabina-backend/pkg/metrics"
	pkgredis "github.com/hijabina/hijabina-backend/pkg/redis"
)

// RedisStore is the slice of the redis client the HTTP layer needs.
type RedisStore interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// RemoteCart is the authenticated cart service including checkout.
type RemoteCart interface {
	controllers.RemoteCart
	controllers.RemoteCheckout
}

// Params groups everything the router wires into handlers.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer

	Auth       auth.Service
	Products   products.Service
	Cart       controllers.LocalCart
	Wishlist   controllers.Wishlist
	Builder    controllers.LocalOrders
	RemoteCart RemoteCart
	Identities remotecart.Feed
	Orders     orders.Service
	Dashboard  dashboard.Service
	Settings   controllers.StoreSettings
	Members    controllers.Members
	Profiles   controllers.Profiles
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    p.DB,
			"redis": pingerOrNil(p.Redis),
		}))
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(p.Gatherer))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AdminAuthLogin(p.Auth, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(p.Products, logg))
		r.Get("/{productId}", controllers.ProductGet(p.Products, logg))
	})

	// Device-scoped storefront. The shopper id comes from X-Shopper-Id.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Shopper(logg))

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(p.Cart, logg))
			r.Delete("/", controllers.CartClear(p.Cart, logg))
			r.Post("/items", controllers.CartAddItem(p.Cart, p.Products, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(p.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(p.Cart, logg))
		})

		r.Route("/api/v1/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(p.Wishlist, logg))
			r.Post("/items", controllers.WishlistAdd(p.Wishlist, logg))
			r.Delete("/items/{productId}", controllers.WishlistRemove(p.Wishlist, logg))
		})

		r.Post("/api/v1/promo/validate", controllers.PromoValidate(p.Cart, logg))

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.With(middleware.Idempotency(p.Redis, logg)).Post("/", controllers.OrderCreate(p.Builder, logg))
			r.Get("/history", controllers.OrderHistory(p.Builder, logg))
		})
	})

	r.Route("/api/v1/me", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.MeCartFetch(p.RemoteCart, logg))
			r.Get("/stream", controllers.MeCartStream(p.RemoteCart, identitySource(p.Identities, logg), cfg.Storefront.StreamHeartbeat, logg))
			r.Post("/items", controllers.MeCartAddItem(p.RemoteCart, p.Products, logg))
			r.Patch("/items/{productId}", controllers.MeCartUpdateItem(p.RemoteCart, logg))
			r.Delete("/items/{productId}", controllers.MeCartRemoveItem(p.RemoteCart, logg))
		})
		r.Post("/checkout", controllers.MeCheckout(p.RemoteCart, logg))
		r.Get("/orders", controllers.MeOrders(p.Orders, logg))
		r.Get("/profile", controllers.MeProfileGet(p.Profiles, logg))
		r.Patch("/profile", controllers.MeProfileUpdate(p.Profiles, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin, enums.UserRolePetugas))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminProductCreate(p.Products, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(p.Products, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(p.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(p.Orders, logg))
			r.Get("/{orderId}", controllers.AdminOrderGet(p.Orders, logg))
			r.Patch("/{orderId}", controllers.AdminOrderUpdateStatus(p.Orders, logg))
			r.Post("/{orderId}/complete", controllers.AdminOrderComplete(p.Orders, logg))
		})

		r.Get("/dashboard", controllers.AdminDashboardStats(p.Dashboard, logg))
		r.Get("/customers", controllers.AdminCustomers(p.Dashboard, logg))
		r.Get("/reports", controllers.AdminReport(p.Dashboard, logg))

		r.Get("/settings", controllers.AdminSettingsGet(p.Settings, logg))
		r.Put("/settings", controllers.AdminSettingsSave(p.Settings, logg))

		r.Route("/members", func(r chi.Router) {
			r.Get("/", controllers.AdminMemberList(p.Members, logg))
			r.Post("/", controllers.AdminMemberAdd(p.Members, logg))
			r.Delete("/{memberId}", controllers.AdminMemberDelete(p.Members, logg))
		})
	})

	return r
}

func identitySource(feed remotecart.Feed, logg *logger.Logger) controllers.IdentitySource {
	return func(ctx context.Context, userID uuid.UUID) (<-chan remotecart.Identity, error) {
		return remotecart.Identities(ctx, feed, userID, logg)
	}
}

func pingerOrNil(store RedisStore) controllers.Pinger {
	if p, ok := store.(controllers.Pinger); ok {
		return p
	}
	return nil
}
