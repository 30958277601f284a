package service

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload bound into a bearer token.
type Claims struct {
	UserID uuid.UUID `json:"id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless bearer tokens.
type TokenService interface {
	// Issue signs a token bound to the given user.
	Issue(userID uuid.UUID) (string, error)

	// Verify checks the token signature (and expiry when one is set) and
	// returns its claims. Every failure is reported as
	// domainerrors.ErrInvalidToken, whatever the cause.
	Verify(tokenString string) (*Claims, error)
}
