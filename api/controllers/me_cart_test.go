package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/api/middleware"
	"github.com/hijabina/hijabina-backend/internal/cart"
	"github.com/hijabina/hijabina-backend/internal/remotecart"
)

type stubRemoteCart struct {
	snapshots []remotecart.Snapshot
	result    cart.Result
	err       error
	gotUser   uuid.UUID
}

func (s *stubRemoteCart) Add(ctx context.Context, userID uuid.UUID, in cart.AddInput) (cart.Result, error) {
	s.gotUser = userID
	return s.result, s.err
}

func (s *stubRemoteCart) Remove(ctx context.Context, userID uuid.UUID, productID string) (cart.Result, error) {
	s.gotUser = userID
	return s.result, s.err
}

func (s *stubRemoteCart) UpdateQuantity(ctx context.Context, userID uuid.UUID, productID string, qty int) (cart.Result, error) {
	s.gotUser = userID
	return s.result, s.err
}

func (s *stubRemoteCart) Cart(ctx context.Context, userID uuid.UUID) (cart.Result, error) {
	s.gotUser = userID
	return s.result, s.err
}

func (s *stubRemoteCart) Watch(ctx context.Context, identities <-chan remotecart.Identity) <-chan remotecart.Snapshot {
	out := make(chan remotecart.Snapshot, len(s.snapshots))
	for _, snap := range s.snapshots {
		out <- snap
	}
	close(out)
	return out
}

func userRequest(method, target, body string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, "customer")
	return req.WithContext(ctx)
}

func staticIdentities(ctx context.Context, userID uuid.UUID) (<-chan remotecart.Identity, error) {
	ch := make(chan remotecart.Identity, 1)
	ch <- remotecart.Identity{UserID: userID}
	return ch, nil
}

func TestMeCartFetchRequiresUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/cart", nil)
	resp := httptest.NewRecorder()
	MeCartFetch(&stubRemoteCart{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestMeCartFetchUsesAuthenticatedUser(t *testing.T) {
	userID := uuid.New()
	svc := &stubRemoteCart{result: cart.Result{Items: []cart.Item{{ProductID: "p1", Name: "Khimar", Price: 99000, Quantity: 1}}}}
	resp := httptest.NewRecorder()
	MeCartFetch(svc, nil).ServeHTTP(resp, userRequest(http.MethodGet, "/api/v1/me/cart", "", userID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotUser != userID {
		t.Fatalf("expected user %s, got %s", userID, svc.gotUser)
	}
}

func TestMeCartStreamRendersEachSnapshot(t *testing.T) {
	userID := uuid.New()
	svc := &stubRemoteCart{snapshots: []remotecart.Snapshot{
		{Anonymous: true},
		{UserID: userID, Items: []cart.Item{{ProductID: "p1", Name: "Khimar", Price: 99000, Quantity: 2}}, Totals: cart.Totals{Subtotal: 198000, ItemCount: 2, Total: 198000}},
	}}

	resp := httptest.NewRecorder()
	MeCartStream(svc, staticIdentities, time.Minute, nil).ServeHTTP(resp, userRequest(http.MethodGet, "/api/v1/me/cart/stream", "", userID))

	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := resp.Body.String()
	if strings.Count(body, "event: cart\n") != 2 {
		t.Fatalf("expected two cart events, got %q", body)
	}
	if !strings.Contains(body, remotecart.MsgNotLoggedIn) {
		t.Fatalf("expected anonymous message in stream, got %q", body)
	}
	if !strings.Contains(body, `"count":2`) {
		t.Fatalf("expected rendered count in stream, got %q", body)
	}
}

func TestMeCartStreamIdentityFailure(t *testing.T) {
	failing := func(ctx context.Context, userID uuid.UUID) (<-chan remotecart.Identity, error) {
		return nil, errors.New("redis down")
	}
	resp := httptest.NewRecorder()
	MeCartStream(&stubRemoteCart{}, failing, time.Minute, nil).ServeHTTP(resp, userRequest(http.MethodGet, "/api/v1/me/cart/stream", "", uuid.New()))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
