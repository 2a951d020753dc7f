package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	authsvc "github.com/ivankudzin/sparkmatch/internal/services/auth"
)

func TestValidateAccessTokenRoundTrip(t *testing.T) {
	svc, manager := newAuthServiceForTest(t)

	token, _, err := manager.GenerateAccessToken("64f0c0ffee", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := svc.ValidateAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != "64f0c0ffee" {
		t.Fatalf("unexpected user id: got %q", claims.UserID)
	}
}

func TestValidateAccessTokenAcceptsLegacyIDClaim(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "legacy-user",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := token.SignedString([]byte("unit-test-secret"))
	if err != nil {
		t.Fatalf("sign legacy token: %v", err)
	}

	claims, err := svc.ValidateAccessToken(context.Background(), raw)
	if err != nil {
		t.Fatalf("validate legacy token: %v", err)
	}
	if claims.UserID != "legacy-user" {
		t.Fatalf("unexpected user id: got %q", claims.UserID)
	}
}

func TestValidateAccessTokenRejectsBadTokens(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)
	other, err := authsvc.NewJWTManager("another-secret", "sparkmatch")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	foreign, _, err := other.GenerateAccessToken("u1", time.Hour)
	if err != nil {
		t.Fatalf("generate foreign token: %v", err)
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("unit-test-secret"))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("unit-test-secret"))
	if err != nil {
		t.Fatalf("sign subjectless token: %v", err)
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong key", token: foreign},
		{name: "expired", token: expired},
		{name: "no subject", token: noSubject},
		{name: "none alg", token: unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ValidateAccessToken(context.Background(), tt.token); !errors.Is(err, authsvc.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	if _, err := authsvc.NewJWTManager("  ", "sparkmatch"); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := authsvc.WithIdentity(context.Background(), authsvc.Identity{UserID: "u9"})
	identity, ok := authsvc.IdentityFromContext(ctx)
	if !ok || identity.UserID != "u9" {
		t.Fatalf("unexpected identity: %+v ok=%v", identity, ok)
	}
	if _, ok := authsvc.IdentityFromContext(context.Background()); ok {
		t.Fatalf("empty context must not carry identity")
	}
}

func newAuthServiceForTest(t *testing.T) (*authsvc.Service, *authsvc.JWTManager) {
	t.Helper()
	manager, err := authsvc.NewJWTManager("unit-test-secret", "sparkmatch")
	if err != nil {
		t.Fatalf("new jwt manager: %v", err)
	}
	return authsvc.NewService(manager), manager
}
