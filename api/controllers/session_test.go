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

	"github.com/hijabina/hijabina-backend/internal/auth"
	pkgAuth "github.com/hijabina/hijabina-backend/pkg/auth"
	"github.com/hijabina/hijabina-backend/pkg/config"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "hijabina", ExpirationMinutes: 30}

type stubAuthService struct {
	resp          *auth.TokenResponse
	err           error
	loggedOutUser uuid.UUID
	loggedOutJTI  string
	refreshAccess string
	refreshToken  string
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.TokenResponse, error) {
	return s.resp, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.TokenResponse, error) {
	return s.resp, s.err
}

func (s *stubAuthService) AdminLogin(ctx context.Context, req auth.LoginRequest) (*auth.TokenResponse, error) {
	return s.resp, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.TokenResponse, error) {
	s.refreshAccess = accessToken
	s.refreshToken = refreshToken
	return s.resp, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, userID uuid.UUID, accessID string) error {
	s.loggedOutUser = userID
	s.loggedOutJTI = accessID
	return s.err
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthLoginSetsTokenHeader(t *testing.T) {
	svc := &stubAuthService{resp: &auth.TokenResponse{AccessToken: "access-token", RefreshToken: "refresh-token"}}
	resp := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"aisyah@hijabina.test","password":"Rahasia#1"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get(tokenHeader); got != "access-token" {
		t.Fatalf("expected token header, got %q", got)
	}
}

func TestAuthLoginInvalidPayload(t *testing.T) {
	resp := httptest.NewRecorder()
	AuthLogin(&stubAuthService{}, nil).ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"email":""}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminAuthLoginForbidden(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeForbidden, "Akses ditolak")}
	resp := httptest.NewRecorder()
	AdminAuthLogin(svc, nil).ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/admin/v1/auth/login", `{"email":"aisyah@hijabina.test","password":"Rahasia#1"}`))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	if resp.Header().Get(tokenHeader) != "" {
		t.Fatal("token header must not be set on failure")
	}
}

func TestAuthRegisterCreated(t *testing.T) {
	svc := &stubAuthService{resp: &auth.TokenResponse{AccessToken: "access-token"}}
	resp := httptest.NewRecorder()
	AuthRegister(svc, nil).ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/v1/auth/register", `{"name":"Aisyah","email":"aisyah@hijabina.test","password":"Rahasia#1"}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestAuthLogoutAcceptsExpiredToken(t *testing.T) {
	userID := uuid.New()
	issued := time.Now().Add(-2 * time.Hour)
	token, err := pkgAuth.MintAccessToken(testJWT, issued, pkgAuth.AccessTokenPayload{UserID: userID, Role: enums.UserRoleCustomer, JTI: "sess-1"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	AuthLogout(svc, testJWT, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.loggedOutUser != userID || svc.loggedOutJTI != "sess-1" {
		t.Fatalf("unexpected logout call user=%s jti=%s", svc.loggedOutUser, svc.loggedOutJTI)
	}
}

func TestAuthLogoutMissingToken(t *testing.T) {
	resp := httptest.NewRecorder()
	AuthLogout(&stubAuthService{}, testJWT, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRefreshPassesBothTokens(t *testing.T) {
	svc := &stubAuthService{resp: &auth.TokenResponse{AccessToken: "new-access", RefreshToken: "new-refresh"}}
	req := jsonRequest(http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"old-refresh"}`)
	req.Header.Set("Authorization", "Bearer old-access")
	resp := httptest.NewRecorder()
	AuthRefresh(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.refreshAccess != "old-access" || svc.refreshToken != "old-refresh" {
		t.Fatalf("unexpected refresh args %q %q", svc.refreshAccess, svc.refreshToken)
	}
	if resp.Header().Get(tokenHeader) != "new-access" {
		t.Fatal("expected rotated token header")
	}
}

func TestAuthRefreshServiceError(t *testing.T) {
	svc := &stubAuthService{err: errors.New("boom")}
	req := jsonRequest(http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"old-refresh"}`)
	req.Header.Set("Authorization", "Bearer old-access")
	resp := httptest.NewRecorder()
	AuthRefresh(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
