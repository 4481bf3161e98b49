package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for managing JWT authentication tokens.
// Tokens are short-lived bearer tokens issued in exchange for the
// configured API key; there is no refresh flow, expired clients simply
// exchange the key again.
type JWTService interface {
	// GenerateToken issues a signed token for the given client.
	GenerateToken(ctx context.Context, clientID uuid.UUID) (string, error)

	// ValidateToken checks the token's signature and time bounds and
	// returns its claims. Failures come back as one of the Err*
	// sentinels in this package.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims carries the decoded contents of a token.
type Claims struct {
	// ClientID identifies the client the token was issued for.
	ClientID uuid.UUID `json:"cid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
