package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MockJWTService is the canonical JWTService test double. Calls return
// the configured field values unless the matching Func field scripts the
// call instead.
type MockJWTService struct {
	GenerateTokenFunc func(ctx context.Context, clientID uuid.UUID) (string, error)
	ValidateTokenFunc func(ctx context.Context, tokenString string) (*Claims, error)

	Token           string
	TokenError      error
	Claims          *Claims
	ValidationError error
}

// NewMockJWTService returns a mock primed with claims that pass simple
// checks: a fresh client ID and an hour of remaining lifetime.
func NewMockJWTService() *MockJWTService {
	now := time.Now()
	clientID := uuid.New()

	return &MockJWTService{
		Token: "mock-jwt-token",
		Claims: &Claims{
			ClientID:  clientID,
			Subject:   clientID.String(),
			IssuedAt:  now,
			ExpiresAt: now.Add(time.Hour),
			ID:        uuid.New().String(),
		},
	}
}

func (m *MockJWTService) GenerateToken(ctx context.Context, clientID uuid.UUID) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(ctx, clientID)
	}
	return m.Token, m.TokenError
}

func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, tokenString)
	}
	return m.Claims, m.ValidationError
}

// WithGenerateTokenFunc scripts GenerateToken and returns the mock for chaining.
func (m *MockJWTService) WithGenerateTokenFunc(
	fn func(ctx context.Context, clientID uuid.UUID) (string, error),
) *MockJWTService {
	m.GenerateTokenFunc = fn
	return m
}
