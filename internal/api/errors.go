package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/quillback/loglearn/internal/api/shared"
	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/service"
	"github.com/quillback/loglearn/internal/service/auth"
	"github.com/quillback/loglearn/internal/store"
	"github.com/quillback/loglearn/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidAPIKey),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrRunNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, task.ErrUnknownTaskType),
		errors.Is(err, task.ErrInvalidPayload),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	// Backpressure: the queue refused the task under the reject policy
	case errors.Is(err, task.ErrQueueFull):
		return http.StatusTooManyRequests

	// Unavailable: shutdown in progress or history not configured
	case errors.Is(err, task.ErrPoolShutdown),
		errors.Is(err, service.ErrHistoryDisabled):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidAPIKey):
		return "Invalid credentials"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	// Not found errors
	case errors.Is(err, service.ErrRunNotFound):
		return "Run not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Bad request errors
	case errors.Is(err, task.ErrUnknownTaskType):
		return "Unknown task type"

	case errors.Is(err, task.ErrInvalidPayload):
		return "Invalid task payload"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, domain.ErrValidation):
		return "Validation error"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"

	// Backpressure and availability
	case errors.Is(err, task.ErrQueueFull):
		return "Task queue is full, retry later"

	case errors.Is(err, task.ErrPoolShutdown):
		return "Service is shutting down"

	case errors.Is(err, service.ErrHistoryDisabled):
		return "Run history is not available"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status code and safe message, logs the
// redacted details, and writes the response. fallbackMessage overrides the
// generic message for unrecognized errors, so handlers can give operation
// context ("Failed to submit task") without exposing internals.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	statusCode := MapErrorToStatusCode(err)
	safeMessage := GetSafeErrorMessage(err)

	if statusCode == http.StatusInternalServerError && fallbackMessage != "" {
		safeMessage = fallbackMessage
	}

	shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Check if this is likely a validation error message
	if strings.Contains(errMsg, "Field validation") {
		// Extract the field name and validation tag
		// Example format: "Key: 'TokenRequest.APIKey' Error:Field validation for 'APIKey' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gt", "gte":
		return "value too small"
	case "lt", "lte":
		return "value too large"
	default:
		return "validation failed"
	}
}
