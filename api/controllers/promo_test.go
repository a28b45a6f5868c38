package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hijabina/hijabina-backend/internal/cart"
	"github.com/hijabina/hijabina-backend/internal/promo"
)

func decodePromo(t *testing.T, resp *httptest.ResponseRecorder) promo.Result {
	t.Helper()
	var env struct {
		Data promo.Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Data
}

func TestPromoValidateExplicitSubtotal(t *testing.T) {
	resp := httptest.NewRecorder()
	PromoValidate(newCartStore(t), nil).ServeHTTP(resp, shopperRequest(http.MethodPost, "/api/v1/promo/validate", `{"code":"hijab10","subtotal":150000}`, "device-1"))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	result := decodePromo(t, resp)
	if !result.Valid || result.Discount != 10000 || result.Code != "HIJAB10" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestPromoValidateDefaultsToCartSubtotal(t *testing.T) {
	store := newCartStore(t)
	if _, err := store.Add(context.Background(), "device-1", cart.AddInput{ProductID: "p1", Name: "Bergo", Price: 40000, Quantity: 2}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := httptest.NewRecorder()
	PromoValidate(store, nil).ServeHTTP(resp, shopperRequest(http.MethodPost, "/api/v1/promo/validate", `{"code":"HIJAB10"}`, "device-1"))
	result := decodePromo(t, resp)
	if result.Valid || result.Discount != 0 {
		t.Fatalf("expected minimum purchase not met for 80000, got %+v", result)
	}
}

func TestPromoValidateUnknownCodeIsNotAnError(t *testing.T) {
	resp := httptest.NewRecorder()
	PromoValidate(newCartStore(t), nil).ServeHTTP(resp, shopperRequest(http.MethodPost, "/api/v1/promo/validate", `{"code":"NOPE","subtotal":500000}`, "device-1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if result := decodePromo(t, resp); result.Valid {
		t.Fatal("expected invalid code")
	}
}

func TestPromoValidateRequiresCode(t *testing.T) {
	resp := httptest.NewRecorder()
	PromoValidate(newCartStore(t), nil).ServeHTTP(resp, shopperRequest(http.MethodPost, "/api/v1/promo/validate", `{"subtotal":1}`, "device-1"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
