package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrRunNotFound indicates that the requested run does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrRunNotFound = errors.New("run not found")

	// ErrHistoryDisabled indicates that run history is not configured
	// (the service was built without a run repository).
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrHistoryDisabled = errors.New("run history is not configured")
)
