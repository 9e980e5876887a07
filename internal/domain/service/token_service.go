package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ShareClaims defines the claims of a share link token.
type ShareClaims struct {
	ShareID uuid.UUID `json:"sid"`
	jwt.RegisteredClaims
}

// ShareTokenService signs and validates share page links.
type ShareTokenService interface {
	// Generate creates a signed token for a stored share page.
	Generate(shareID uuid.UUID) (string, error)

	// Validate checks a token and returns its claims.
	Validate(token string) (*ShareClaims, error)

	// TTL returns how long generated tokens stay valid.
	TTL() time.Duration
}
