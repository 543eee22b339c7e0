// Package auth issues and verifies the HS256 session tokens that identify the
// owner of persisted scans. The subject claim carries the user id.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franckalain/lymegrove/internal/clock"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "lymegrove"

var (
	ErrNoSecret     = errors.New("auth secret is not configured")
	ErrMissingToken = errors.New("missing token")
	ErrNoSubject    = errors.New("token has no subject")
)

// Tokens signs and verifies session tokens with a shared secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokens creates a token helper. A zero ttl issues tokens without expiry.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, clock: clock.Real{}}
}

// WithClock returns a copy that reads time from c.
func (t *Tokens) WithClock(c clock.Clock) *Tokens {
	cp := *t
	cp.clock = c
	return &cp
}

// Issue signs a token for userID.
func (t *Tokens) Issue(userID string) (string, error) {
	if len(t.secret) == 0 {
		return "", ErrNoSecret
	}
	if userID == "" {
		return "", ErrNoSubject
	}

	now := t.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:  userID,
		Issuer:   issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks raw and returns the user id it was issued for. raw may carry
// a "Bearer " prefix.
func (t *Tokens) Verify(raw string) (string, error) {
	if len(t.secret) == 0 {
		return "", ErrNoSecret
	}
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return "", ErrMissingToken
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	return claims.Subject, nil
}
