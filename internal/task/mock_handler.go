package task

import (
	"context"
	"fmt"
)

// MockPayload is a simple payload structure used for testing
type MockPayload struct {
	Message string `json:"message"`
}

// NewMockRegistry creates a registry with an echo handler for each of the
// given type tags. Each handler returns its payload's message, making
// results easy to assert on. Useful for tests that need a working pool
// without real analysis handlers.
func NewMockRegistry(taskTypes ...string) *Registry {
	r := NewRegistry()
	for _, taskType := range taskTypes {
		// Registering fixed literal types cannot fail
		_ = Register(r, taskType, func(ctx context.Context, payload MockPayload) (any, error) {
			return fmt.Sprintf("%s: %s", taskType, payload.Message), nil
		})
	}
	return r
}

// RegisterMock binds a custom MockPayload handler to a type tag, for tests
// that need failing, blocking, or panicking behavior.
func RegisterMock(r *Registry, taskType string, fn func(ctx context.Context, payload MockPayload) (any, error)) error {
	return Register(r, taskType, fn)
}
