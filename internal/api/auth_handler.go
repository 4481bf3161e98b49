package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quillback/loglearn/internal/api/shared"
	"github.com/quillback/loglearn/internal/config"
	"github.com/quillback/loglearn/internal/platform/logger"
	"github.com/quillback/loglearn/internal/redact"
	"github.com/quillback/loglearn/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	jwtService     auth.JWTService
	apiKeyVerifier auth.APIKeyVerifier
	authConfig     *config.AuthConfig
	logger         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	jwtService auth.JWTService,
	apiKeyVerifier auth.APIKeyVerifier,
	authConfig *config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}

	return &AuthHandler{
		jwtService:     jwtService,
		apiKeyVerifier: apiKeyVerifier,
		authConfig:     authConfig,
		logger:         logger.With(slog.String("component", "auth_handler")),
	}
}

// Token handles POST /auth/token requests.
// It exchanges the configured API key for a short-lived bearer token. Each
// exchange mints a fresh client ID; there is no refresh flow, expired
// clients simply exchange the key again.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req TokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	// Failed key comparisons are logged at WARN; repeated failures are the
	// signature of a brute-force attempt.
	if err := h.apiKeyVerifier.Compare(h.authConfig.APIKeyHash, req.APIKey); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusUnauthorized, "Invalid credentials",
			auth.ErrInvalidAPIKey,
			shared.WithElevatedLogLevel())
		return
	}

	clientID := uuid.New()

	token, err := h.jwtService.GenerateToken(r.Context(), clientID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to generate access token", err)
		return
	}

	expiresAt := time.Now().
		Add(time.Duration(h.authConfig.TokenLifetimeMinutes) * time.Minute).
		UTC().
		Format(time.RFC3339)

	log.Debug("issued access token", slog.String("client_id", clientID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		ClientID:    clientID,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	})
}
