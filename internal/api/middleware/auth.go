package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/quillback/loglearn/internal/api/shared"
	"github.com/quillback/loglearn/internal/platform/logger"
	"github.com/quillback/loglearn/internal/redact"
	"github.com/quillback/loglearn/internal/service/auth"
)

// AuthMiddleware guards routes with JWT bearer authentication.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates an AuthMiddleware backed by jwtService.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// Authenticate rejects requests without a valid bearer token and stores
// the token's client ID in the request context for downstream handlers.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" || strings.ContainsRune(token, ' ') {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			status, message := classifyAuthError(err)
			if status == http.StatusInternalServerError {
				logger.FromContext(r.Context()).Error("failed to validate token",
					"error", redact.Error(err))
			}
			shared.RespondWithError(w, r, status, message)
			return
		}

		ctx := context.WithValue(r.Context(), shared.ClientIDContextKey, claims.ClientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// classifyAuthError maps a token validation failure to a response.
// Known token problems are the client's fault; anything else is ours
// and must not leak its detail.
func classifyAuthError(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return http.StatusUnauthorized, "Token not yet valid"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, "Invalid token"
	default:
		return http.StatusInternalServerError, "Authentication error"
	}
}

// GetClientID returns the authenticated client ID stored by Authenticate,
// and whether one was present.
func GetClientID(r *http.Request) (uuid.UUID, bool) {
	clientID, ok := r.Context().Value(shared.ClientIDContextKey).(uuid.UUID)
	return clientID, ok
}
