package jwt

import (
	"errors"
	"testing"
	"time"
)

func newTestService() *HMACService {
	return NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()

	tok, err := svc.GenerateAccessToken("local-abc", IdentityHints{
		Email:    "jane@x.com",
		Username: "jane",
		FullName: "Jane Doe",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "local-abc" {
		t.Fatalf("expected subject local-abc, got %q", claims.Subject)
	}
	if claims.Email != "jane@x.com" || claims.FullName != "Jane Doe" {
		t.Fatalf("expected hints to round-trip, got %+v", claims)
	}
	if claims.TokenType != TokenTypeAccess || svc.IsRefreshToken(claims) {
		t.Fatalf("expected access token type")
	}
}

func TestRefreshTokenHasNoHints(t *testing.T) {
	svc := newTestService()

	tok, err := svc.GenerateRefreshToken("local-abc")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !svc.IsRefreshToken(claims) {
		t.Fatalf("expected refresh token")
	}
	if claims.Email != "" || claims.FullName != "" {
		t.Fatalf("refresh tokens must not carry hints: %+v", claims)
	}
}

func TestExpiredToken(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	tok, err := svc.GenerateAccessToken("local-abc", IdentityHints{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.ValidateToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestGarbageToken(t *testing.T) {
	svc := newTestService()
	if _, err := svc.ValidateToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
