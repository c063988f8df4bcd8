package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const jwtSecretSetting = "jwt_secret"

// ErrInvalidToken is returned for any token that does not verify
var ErrInvalidToken = errors.New("invalid token")

// Identity is who a verified token speaks for
type Identity struct {
	PlayerID string
	Name     string
}

// Claims carried by pilot tokens
type Claims struct {
	Name string `json:"usr"`
	jwt.RegisteredClaims
}

// Auth verifies pilot tokens issued by the account service. Accounts live
// outside this server; it only checks signatures and expiry.
type Auth struct {
	secret []byte
	expiry time.Duration
}

// NewAuth builds an Auth from config. Without a configured secret it uses
// the one persisted in the settings table, creating it on first start.
func NewAuth(cfg AuthConfig, db *DB, logger *slog.Logger) (*Auth, error) {
	a := &Auth{secret: []byte(cfg.JWTSecret), expiry: cfg.TokenExpiration}
	if len(a.secret) > 0 {
		return a, nil
	}
	secret, err := loadOrCreateSecret(db)
	if err != nil {
		return nil, err
	}
	logger.With("component", "auth").Info("Using persisted token secret")
	a.secret = secret
	return a, nil
}

func loadOrCreateSecret(db *DB) ([]byte, error) {
	if db != nil {
		h, err := db.GetSetting(jwtSecretSetting)
		if err != nil {
			return nil, fmt.Errorf("read token secret: %w", err)
		}
		if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
			return b, nil
		}
	}
	secret := make([]byte, 32)
	rand.Read(secret)
	if db != nil {
		if err := db.SetSetting(jwtSecretSetting, hex.EncodeToString(secret)); err != nil {
			return nil, fmt.Errorf("persist token secret: %w", err)
		}
	}
	return secret, nil
}

// ValidateToken verifies tokenStr and returns the identity it carries
func (a *Auth) ValidateToken(tokenStr string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{PlayerID: claims.Subject, Name: claims.Name}, nil
}

// IssueToken signs a token for the given identity. The account service owns
// issuing in production; this is used by tooling and tests.
func (a *Auth) IssueToken(id Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.PlayerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// GenerateGuestName creates a guest name like "Guest_a3f2c1"
func GenerateGuestName() string {
	return "Guest_" + GenerateID(3)
}
