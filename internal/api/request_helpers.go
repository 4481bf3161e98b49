package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quillback/loglearn/internal/api/shared"
	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/task"
)

// getClientIDFromContext extracts the authenticated client's UUID from the
// request context. The client ID is expected to be placed in the context by
// the authentication middleware.
//
// Returns:
//   - (uuid.UUID, true): The client's UUID if successfully extracted
//   - (uuid.UUID{}, false): A zero UUID and false if the client ID is not found or invalid
func getClientIDFromContext(r *http.Request) (uuid.UUID, bool) {
	clientID, ok := r.Context().Value(shared.ClientIDContextKey).(uuid.UUID)
	if !ok || clientID == uuid.Nil {
		return uuid.Nil, false
	}
	return clientID, true
}

// getPathUUID extracts a UUID from the URL path parameters.
// It parses and validates the UUID, handling common error cases.
//
// Returns:
//   - (uuid.UUID, nil): The parsed UUID if valid
//   - (uuid.UUID{}, error): A zero UUID and appropriate error if the parameter is missing or invalid
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%s is required: %w", paramName, domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s has invalid format: %w", paramName, domain.ErrInvalidID)
	}

	return id, nil
}

// parsePriority maps a client-supplied priority string to a task.Priority.
// An empty value selects PriorityNormal; anything other than the known
// priority names is a validation error.
func parsePriority(value string) (task.Priority, error) {
	switch value {
	case "":
		return task.PriorityNormal, nil
	case string(task.PriorityNormal):
		return task.PriorityNormal, nil
	case string(task.PriorityHigh):
		return task.PriorityHigh, nil
	default:
		return "", fmt.Errorf("priority must be %q or %q: %w",
			task.PriorityNormal, task.PriorityHigh, domain.ErrValidation)
	}
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent. A present but non-numeric or negative value is a
// validation error.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer: %w", name, domain.ErrValidation)
	}
	return value, nil
}

// splitCSV splits a comma-separated query value into trimmed, non-empty
// elements. An empty input yields a nil slice.
func splitCSV(value string) []string {
	if value == "" {
		return nil
	}

	var parts []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
