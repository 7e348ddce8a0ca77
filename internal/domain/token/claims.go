// Package token decodes bearer credentials issued by the Quillpress backend.
//
// The client depends only on the token being decodable and carrying a numeric
// expiry claim. Signature verification is the backend's responsibility and is
// never performed here.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a credential cannot be decoded or is
// missing its expiry claim.
var ErrMalformedToken = errors.New("malformed token")

// Claims holds the subset of token claims the client interprets.
type Claims struct {
	// ExpiresAt is the instant the token stops being valid, from the exp claim.
	ExpiresAt time.Time
}

// Decode extracts the expiry claim from a JWT-shaped bearer credential
// without verifying its signature. Returns ErrMalformedToken (wrapped) when
// the token cannot be parsed or carries no exp claim.
func Decode(raw string) (*Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if exp == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrMalformedToken)
	}

	return &Claims{ExpiresAt: exp.Time}, nil
}
