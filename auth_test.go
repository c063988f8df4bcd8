package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	a, err := NewAuth(AuthConfig{JWTSecret: testSecret, TokenExpiration: time.Hour}, nil, testLogger())
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	tok, err := a.IssueToken(Identity{PlayerID: "p1", Name: "Ace"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	id, err := a.ValidateToken(tok)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if id.PlayerID != "p1" || id.Name != "Ace" {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	a, _ := NewAuth(AuthConfig{JWTSecret: testSecret, TokenExpiration: time.Hour}, nil, testLogger())
	sign := func(claims jwt.Claims, method jwt.SigningMethod, key interface{}) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	now := time.Now()
	valid := jwt.RegisteredClaims{Subject: "p1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign(valid, jwt.SigningMethodHS256, []byte(strings.Repeat("x", 32)))},
		{"expired", sign(jwt.RegisteredClaims{Subject: "p1", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))},
			jwt.SigningMethodHS256, []byte(testSecret))},
		{"no expiry", sign(jwt.RegisteredClaims{Subject: "p1"}, jwt.SigningMethodHS256, []byte(testSecret))},
		{"no subject", sign(jwt.RegisteredClaims{ExpiresAt: valid.ExpiresAt}, jwt.SigningMethodHS256, []byte(testSecret))},
		{"none alg", sign(valid, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := a.ValidateToken(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestPersistedSecret(t *testing.T) {
	db := openTestDB(t)
	cfg := AuthConfig{TokenExpiration: time.Hour}
	a1, err := NewAuth(cfg, db, testLogger())
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	tok, _ := a1.IssueToken(Identity{PlayerID: "p1"})

	// a restarted server reuses the stored secret
	a2, err := NewAuth(cfg, db, testLogger())
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	if _, err := a2.ValidateToken(tok); err != nil {
		t.Errorf("token from previous secret rejected: %v", err)
	}
}

func TestGenerateGuestName(t *testing.T) {
	name := GenerateGuestName()
	if !strings.HasPrefix(name, "Guest_") || len(name) != len("Guest_")+6 {
		t.Errorf("unexpected guest name %q", name)
	}
}
