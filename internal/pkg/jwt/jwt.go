// internal/pkg/jwt/jwt.go
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims are the bearer token claims the BFF cares about. Customer tokens are
// only inspected; the backend checks their signatures. Admin tokens are
// verified with Verifier.
type Claims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// Inspect decodes a bearer token without verifying its signature.
// Opaque (non-JWT) tokens yield ErrInvalidToken.
func Inspect(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExpiresAt returns the token expiry. ok is false for opaque tokens and tokens
// without an exp claim.
func ExpiresAt(tokenString string) (time.Time, bool) {
	claims, err := Inspect(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// CheckExpiry returns ErrExpiredToken when the token carries an exp claim in
// the past relative to now. Opaque tokens are never reported expired.
func CheckExpiry(tokenString string, now time.Time) error {
	exp, ok := ExpiresAt(tokenString)
	if !ok {
		return nil
	}
	if !now.Before(exp) {
		return ErrExpiredToken
	}
	return nil
}

// HasRole reports whether the token lists the given role, with or without
// the ROLE_ prefix.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role || r == "ROLE_"+role {
			return true
		}
	}
	return false
}

// Verifier validates HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier. An empty secret yields nil.
func NewVerifier(secret string) *Verifier {
	if secret == "" {
		return nil
	}
	return &Verifier{secret: []byte(secret)}
}

// Validate checks the signature and expiry and returns the claims.
func (v *Verifier) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
