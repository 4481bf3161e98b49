package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrNoTexts is returned when classification is requested for an empty input set.
	ErrNoTexts = errors.New("texts cannot be empty")
)
