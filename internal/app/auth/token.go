package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openshelf/catalog/internal/errors"
)

// Claims is the JWT payload issued at login. The role is informational;
// authorization always re-resolves the principal from storage.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 bearer tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner constructs a token signer. A zero ttl defaults to 24h.
func NewSigner(secret []byte, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: secret, ttl: ttl}
}

// Issue signs a token for the principal and returns it with its expiry.
func (s *Signer) Issue(p Principal) (string, time.Time, error) {
	now := time.Now().UTC()
	expires := now.Add(s.ttl)
	claims := Claims{
		Username: p.Username,
		Role:     string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses a bearer token and returns the account id it was issued
// for. Malformed, mis-signed, and expired tokens all fail with
// Unauthorized.
func (s *Signer) Verify(tokenString string) (string, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.Unauthorized("invalid or expired token")
	}
	if claims.Subject == "" {
		return "", errors.Unauthorized("invalid or expired token")
	}
	return claims.Subject, nil
}
