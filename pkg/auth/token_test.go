package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/spesa/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "spesa-devapi",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: 7, Username: "mario", Role: RoleUser})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != 7 {
		t.Fatalf("expected id 7, got %d", claims.UserID)
	}
	if claims.Subject != "mario" {
		t.Fatalf("expected sub mario, got %s", claims.Subject)
	}
	if claims.Role != RoleUser {
		t.Fatalf("unexpected role %s", claims.Role)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 1, Username: "a", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpirationMinutes = 15
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: 1, Username: "a", Role: RoleUser})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMintAccessTokenRejectsBadPayload(t *testing.T) {
	cfg := testJWTConfig()
	bad := []AccessTokenPayload{
		{UserID: 0, Username: "a", Role: RoleUser},
		{UserID: 1, Username: " ", Role: RoleUser},
		{UserID: 1, Username: "a", Role: "owner"},
	}
	for _, payload := range bad {
		if _, err := MintAccessToken(cfg, time.Now(), payload); err == nil {
			t.Fatalf("expected error for %+v", payload)
		}
	}
}

func TestReadClaimsWithoutKey(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()
	token, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: 42, Username: "luigi", Role: RoleUser})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ReadClaims(token)
	if err != nil {
		t.Fatalf("read claims: %v", err)
	}
	if claims.UserID != 42 || claims.OwnerID() != "42" {
		t.Fatalf("unexpected id %d", claims.UserID)
	}
	if claims.Expired(now) {
		t.Fatal("fresh token should not be expired")
	}
	if !claims.Expired(now.Add(time.Hour)) {
		t.Fatal("token should be expired after its ttl")
	}

	if _, err := ReadClaims("garbage"); err == nil {
		t.Fatal("expected malformed token error")
	}
}
