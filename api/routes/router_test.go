package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/hijabina/hijabina-backend/internal/cart"
	pkgAuth "github.com/hijabina/hijabina-backend/pkg/auth"
	"github.com/hijabina/hijabina-backend/pkg/config"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	"github.com/hijabina/hijabina-backend/pkg/kv"
	"github.com/hijabina/hijabina-backend/pkg/metrics"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "hijabina", ExpirationMinutes: 30}

type stubRedis struct {
	data map[string]string
}

func (s *stubRedis) Get(ctx context.Context, key string) (string, error) {
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (s *stubRedis) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = value.(string)
	return true, nil
}

func (s *stubRedis) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (s *stubRedis) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 1, nil
}

func (s *stubRedis) RateLimitKey(scope string) string { return "rl:" + scope }

func (s *stubRedis) Ping(ctx context.Context) error { return nil }

type stubSessions struct{}

func (stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := cart.NewStore(cart.StoreParams{KV: kv.NewMemoryStore()})
	if err != nil {
		t.Fatalf("cart store: %v", err)
	}
	reg := prometheus.NewRegistry()
	_ = metrics.NewStorefrontMetrics(reg)

	return NewRouter(Params{
		Config: &config.Config{
			App:  config.AppConfig{Env: "dev", Port: "0"},
			JWT:  testJWT,
			CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		},
		Redis:    &stubRedis{data: map[string]string{}},
		Sessions: stubSessions{},
		Gatherer: reg,
		Cart:     store,
	})
}

func bearer(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testJWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: role})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return "Bearer " + token
}

func TestHealthLive(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "cart_subscriptions_active") {
		t.Fatalf("expected storefront gauge exported, got %s", resp.Body.String())
	}
}

func TestCartRequiresShopperHeader(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without shopper, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Shopper-Id", "device-1")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with shopper, got %d", resp.Code)
	}
}

func TestAdminRoutesRequireStaff(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	req.Header.Set("Authorization", bearer(t, enums.UserRoleCustomer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", resp.Code)
	}
}

func TestMeCheckoutRequiresIdempotencyKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/checkout", strings.NewReader(`{}`))
	req.Header.Set("Authorization", bearer(t, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key, got %d", resp.Code)
	}
}

func TestLocalOrderRequiresIdempotencyKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	req.Header.Set("X-Shopper-Id", "device-1")
	resp := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key, got %d", resp.Code)
	}
}

func TestMeProfileRequiresLogin(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPatch} {
		resp := httptest.NewRecorder()
		newTestRouter(t).ServeHTTP(resp, httptest.NewRequest(method, "/api/v1/me/profile", strings.NewReader(`{}`)))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", method, resp.Code)
		}
	}
}
