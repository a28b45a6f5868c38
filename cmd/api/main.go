package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/hijabina/hijabina-backend/api/routes"
	"github.com/hijabina/hijabina-backend/internal/auth"
	"github.com/hijabina/hijabina-backend/internal/cart"
	"github.com/hijabina/hijabina-backend/internal/dashboard"
	"github.com/hijabina/hijabina-backend/internal/members"
	"github.com/hijabina/hijabina-backend/internal/orders"
	"github.com/hijabina/hijabina-backend/internal/products"
	"github.com/hijabina/hijabina-backend/internal/remotecart"
	"github.com/hijabina/hijabina-backend/internal/settings"
	"github.com/hijabina/hijabina-backend/internal/users"
	"github.com/hijabina/hijabina-backend/internal/wishlist"
	"github.com/hijabina/hijabina-backend/pkg/auth/session"
	"github.com/hijabina/hijabina-backend/pkg/config"
	"github.com/hijabina/hijabina-backend/pkg/db"
	"github.com/hijabina/hijabina-backend/pkg/instance"
	"github.com/hijabina/hijabina-backend/pkg/kv"
	"github.com/hijabina/hijabina-backend/pkg/lock"
	"github.com/hijabina/hijabina-backend/pkg/logger"
	"github.com/hijabina/hijabina-backend/pkg/metrics"
	"github.com/hijabina/hijabina-backend/pkg/migrate"
	"github.com/hijabina/hijabina-backend/pkg/outbox"
	"github.com/hijabina/hijabina-backend/pkg/redis"
	"github.com/hijabina/hijabina-backend/pkg/security"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	closeAll := func() {
		if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing connections", err)
		}
	}
	defer closeAll()

	fail := func(msg string, err error) {
		logg.Error(ctx, msg, err)
		closeAll()
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefrontMetrics(reg)

	// device-scoped stores
	localKV, err := kv.NewRedisStore(redisClient, cfg.Redis.LocalStateTTL)
	if err != nil {
		fail("failed to create local kv store", err)
	}
	badges, err := cart.NewPublishNotifier(redisClient)
	if err != nil {
		fail("failed to create badge notifier", err)
	}
	cartStore, err := cart.NewStore(cart.StoreParams{
		KV:       localKV,
		Policy:   cart.PolicyFromConfig(cfg.Storefront),
		Notifier: badges,
		Logger:   logg,
		Metrics:  storefrontMetrics,
	})
	if err != nil {
		fail("failed to create cart store", err)
	}
	wishlistStore, err := wishlist.NewStore(wishlist.StoreParams{KV: localKV, Metrics: storefrontMetrics})
	if err != nil {
		fail("failed to create wishlist store", err)
	}
	locker, err := lock.NewLocker(redisClient, cfg.Storefront.CheckoutLockTTL)
	if err != nil {
		fail("failed to create checkout locker", err)
	}
	ids := orders.NewIDGenerator(nil, orders.NewNode())
	builder, err := orders.NewBuilder(orders.BuilderParams{
		Cart:    cartStore,
		IDs:     ids,
		Logger:  logg,
		Metrics: storefrontMetrics,
		Locker:  locker,
		LockKey: redisClient.LockKey,
	})
	if err != nil {
		fail("failed to create order builder", err)
	}

	// account-scoped services
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	orderRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:   orderRepo,
		Tx:     dbClient,
		Outbox: outboxService,
		Logger: logg,
	})
	if err != nil {
		fail("failed to create order service", err)
	}

	feed, err := remotecart.NewRedisFeed(redisClient)
	if err != nil {
		fail("failed to create change feed", err)
	}
	remoteCart, err := remotecart.NewService(remotecart.ServiceParams{
		Collection: remotecart.NewCollection(dbClient.DB()),
		Orders:     orderRepo,
		Tx:         dbClient,
		Outbox:     outboxService,
		Feed:       feed,
		Locker:     locker,
		LockKey:    redisClient.LockKey,
		IDs:        ids,
		Policy:     cart.PolicyFromConfig(cfg.Storefront),
		Timeout:    cfg.Storefront.CollaboratorTimeout,
		Logger:     logg,
		Metrics:    storefrontMetrics,
	})
	if err != nil {
		fail("failed to create remote cart service", err)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		fail("failed to create session manager", err)
	}
	userRepo := users.NewRepository(dbClient.DB())
	authService, err := auth.NewService(auth.ServiceParams{
		Users:     userRepo,
		Sessions:  sessionManager,
		Hasher:    security.NewHasher(cfg.Password),
		JWTConfig: cfg.JWT,
		Identity:  remotecart.IdentityNotifier{Feed: feed},
		Logger:    logg,
	})
	if err != nil {
		fail("failed to create auth service", err)
	}
	profileService, err := users.NewProfileService(userRepo, logg)
	if err != nil {
		fail("failed to create profile service", err)
	}

	productService, err := products.NewService(products.NewRepository(dbClient.DB()), logg)
	if err != nil {
		fail("failed to create product service", err)
	}
	dashboardService, err := dashboard.NewService(dashboard.NewRepository(dbClient.DB()), logg)
	if err != nil {
		fail("failed to create dashboard service", err)
	}
	settingsService, err := settings.NewService(settings.NewRepository(dbClient.DB()), logg)
	if err != nil {
		fail("failed to create settings service", err)
	}
	memberService, err := members.NewService(members.NewRepository(dbClient.DB()), logg)
	if err != nil {
		fail("failed to create member service", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Sessions:   sessionManager,
			Gatherer:   reg,
			Auth:       authService,
			Products:   productService,
			Cart:       cartStore,
			Wishlist:   wishlistStore,
			Builder:    builder,
			RemoteCart: remoteCart,
			Identities: feed,
			Orders:     orderService,
			Dashboard:  dashboardService,
			Settings:   settingsService,
			Members:    memberService,
			Profiles:   profileService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts end on shutdown so open cart streams return
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fail("api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
		}
	}
}
