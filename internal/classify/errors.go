package classify

import "errors"

// Common errors returned by topic classifier implementations
var (
	// ErrClassificationFailed is returned when classification fails for any general reason
	ErrClassificationFailed = errors.New("failed to classify texts")

	// ErrInvalidResponse is returned when the model response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from classification model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by classification model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during classification")

	// ErrInvalidConfig is returned when the classifier configuration is invalid
	ErrInvalidConfig = errors.New("invalid classifier configuration")
)
