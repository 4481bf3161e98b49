package analysis

import (
	"context"
	"errors"
	"sort"
)

// defaultTopTerms bounds the term list returned by batch_learning when the
// payload does not request a specific count.
const defaultTopTerms = 10

// LearningPayload is the input for batch_learning tasks.
type LearningPayload struct {
	Texts []string `json:"texts"`
	// TopN caps the returned term list. Defaults to defaultTopTerms.
	TopN int `json:"top_n,omitempty"`
}

// Validate implements the pool's payload check.
func (p LearningPayload) Validate() error {
	if len(p.Texts) == 0 {
		return errors.New("learning payload requires at least one text")
	}
	if p.TopN < 0 {
		return errors.New("top_n cannot be negative")
	}
	return nil
}

// TermCount pairs a term with its frequency across the batch.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// LearningResult is the outcome of one batch_learning task.
type LearningResult struct {
	Documents   int `json:"documents"`
	UniqueTerms int `json:"unique_terms"`
	// TopTerms is ordered by descending count, ties broken alphabetically.
	TopTerms []TermCount `json:"top_terms"`
}

// runLearning aggregates term frequencies across the batch and keeps the
// most frequent terms.
func runLearning(ctx context.Context, payload LearningPayload) (any, error) {
	counts := make(map[string]int)
	for _, text := range payload.Texts {
		for _, term := range terms(text) {
			counts[term]++
		}
	}

	top := make([]TermCount, 0, len(counts))
	for term, count := range counts {
		top = append(top, TermCount{Term: term, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Term < top[j].Term
	})

	limit := payload.TopN
	if limit == 0 {
		limit = defaultTopTerms
	}
	if len(top) > limit {
		top = top[:limit]
	}

	return LearningResult{
		Documents:   len(payload.Texts),
		UniqueTerms: len(counts),
		TopTerms:    top,
	}, nil
}
