package analysis

import (
	"context"
	"errors"
)

// CleaningPayload is the input for data_cleaning tasks.
type CleaningPayload struct {
	Texts []string `json:"texts"`
	// KeepDuplicates preserves repeated texts instead of dropping them.
	KeepDuplicates bool `json:"keep_duplicates,omitempty"`
}

// Validate implements the pool's payload check.
func (p CleaningPayload) Validate() error {
	if len(p.Texts) == 0 {
		return errors.New("cleaning payload requires at least one text")
	}
	return nil
}

// CleaningResult is the outcome of one data_cleaning task.
type CleaningResult struct {
	// Cleaned holds the normalized texts in input order.
	Cleaned []string `json:"cleaned"`
	// Dropped counts texts removed because normalization left them empty.
	Dropped int `json:"dropped"`
	// Deduplicated counts texts removed as exact duplicates.
	Deduplicated int `json:"deduplicated"`
}

// runCleaning normalizes whitespace, drops texts that normalize to empty,
// and removes exact duplicates unless the payload keeps them.
func runCleaning(ctx context.Context, payload CleaningPayload) (any, error) {
	result := CleaningResult{Cleaned: make([]string, 0, len(payload.Texts))}

	seen := make(map[string]struct{}, len(payload.Texts))
	for _, text := range payload.Texts {
		cleaned := collapseWhitespace(text)
		if cleaned == "" {
			result.Dropped++
			continue
		}
		if !payload.KeepDuplicates {
			if _, ok := seen[cleaned]; ok {
				result.Deduplicated++
				continue
			}
			seen[cleaned] = struct{}{}
		}
		result.Cleaned = append(result.Cleaned, cleaned)
	}

	return result, nil
}
