package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/pkg/config"
	"github.com/hijabina/hijabina-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "hijabina", ExpirationMinutes: 30}

func TestMintAndParseAccessToken(t *testing.T) {
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(testJWT, now, AccessTokenPayload{UserID: userID, Name: "Aisyah", Role: enums.UserRoleCustomer, JTI: "sess-1"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseAccessToken(testJWT, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID || claims.Role != enums.UserRoleCustomer || claims.Name != "Aisyah" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID != "sess-1" || claims.Issuer != "hijabina" || claims.Subject != userID.String() {
		t.Fatalf("unexpected registered claims %+v", claims.RegisteredClaims)
	}
	if claims.IsStaff() {
		t.Fatal("customer must not be staff")
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != 30*time.Minute {
		t.Fatalf("unexpected ttl %s", got)
	}
}

func TestMintGeneratesJTIAndValidatesPayload(t *testing.T) {
	token, err := MintAccessToken(testJWT, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRolePetugas})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseAccessToken(testJWT, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		t.Fatalf("expected generated uuid jti, got %q", claims.ID)
	}
	if !claims.IsStaff() {
		t.Fatal("petugas should be staff")
	}

	if _, err := MintAccessToken(testJWT, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: "owner"}); err == nil {
		t.Fatal("expected invalid role to fail")
	}
	if _, err := MintAccessToken(testJWT, time.Now(), AccessTokenPayload{Role: enums.UserRoleAdmin}); err == nil {
		t.Fatal("expected missing user to fail")
	}
	if _, err := MintAccessToken(config.JWTConfig{Issuer: "x", ExpirationMinutes: 1}, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin}); err == nil {
		t.Fatal("expected missing secret to fail")
	}
}

func TestParseRejectsExpiredTamperedAndForeignTokens(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	expired, err := MintAccessToken(testJWT, past, AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer, JTI: "old"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(testJWT, expired); err == nil {
		t.Fatal("expected expired token to fail")
	}
	claims, err := ParseAccessTokenAllowExpired(testJWT, expired)
	if err != nil || claims.ID != "old" {
		t.Fatalf("expected expired token readable for refresh, got %v %v", claims, err)
	}

	other := testJWT
	other.Secret = "different"
	if _, err := ParseAccessTokenAllowExpired(other, expired); err == nil {
		t.Fatal("expected signature check even when expiry is ignored")
	}

	foreign := testJWT
	foreign.Issuer = "someone-else"
	if _, err := ParseAccessToken(foreign, expired); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, AccessTokenClaims{UserID: uuid.New(), Role: enums.UserRoleAdmin})
	raw, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := ParseAccessToken(testJWT, raw); err == nil || !strings.Contains(err.Error(), "signing method") {
		t.Fatalf("expected none alg to be rejected, got %v", err)
	}
}
