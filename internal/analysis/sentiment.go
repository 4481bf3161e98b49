package analysis

import (
	"context"
	"errors"
)

// Sentiment labels assigned to scored text.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// sentimentThreshold is the minimum absolute score for a non-neutral label.
const sentimentThreshold = 0.1

// positiveTerms and negativeTerms form the scoring lexicon. Matching is
// done on lowercased tokens, so entries are lowercase.
var positiveTerms = map[string]struct{}{
	"good": {}, "great": {}, "success": {}, "successful": {}, "succeeded": {},
	"fixed": {}, "resolved": {}, "fast": {}, "improved": {}, "stable": {},
	"passed": {}, "works": {}, "working": {}, "clean": {}, "recovered": {},
	"healthy": {}, "ready": {}, "completed": {}, "ok": {},
}

var negativeTerms = map[string]struct{}{
	"error": {}, "errors": {}, "fail": {}, "failed": {}, "failure": {},
	"slow": {}, "crash": {}, "crashed": {}, "broken": {}, "timeout": {},
	"bug": {}, "critical": {}, "fatal": {}, "exception": {}, "degraded": {},
	"unable": {}, "invalid": {}, "lost": {}, "rejected": {}, "denied": {},
}

// SentimentPayload is the input for sentiment_analysis tasks.
type SentimentPayload struct {
	Texts []string `json:"texts"`
}

// Validate implements the pool's payload check.
func (p SentimentPayload) Validate() error {
	if len(p.Texts) == 0 {
		return errors.New("sentiment payload requires at least one text")
	}
	return nil
}

// SentimentScore is the per-text outcome.
type SentimentScore struct {
	// Score is in [-1, 1]: positive lexicon hits push it up, negative
	// hits push it down.
	Score float64 `json:"score"`
	Label string  `json:"label"`
	// Hits counts the lexicon terms matched in the text.
	Hits int `json:"hits"`
}

// SentimentResult is the outcome of one sentiment_analysis task.
type SentimentResult struct {
	Scores  []SentimentScore `json:"scores"`
	Average float64          `json:"average"`
	Label   string           `json:"label"`
}

// runSentiment scores each text against the lexicon.
func runSentiment(ctx context.Context, payload SentimentPayload) (any, error) {
	result := SentimentResult{Scores: make([]SentimentScore, 0, len(payload.Texts))}

	sum := 0.0
	for _, text := range payload.Texts {
		score := scoreSentiment(text)
		result.Scores = append(result.Scores, score)
		sum += score.Score
	}
	result.Average = sum / float64(len(payload.Texts))
	result.Label = sentimentLabel(result.Average)

	return result, nil
}

func scoreSentiment(text string) SentimentScore {
	positive, negative := 0, 0
	for _, token := range tokenize(text) {
		if _, ok := positiveTerms[token]; ok {
			positive++
		}
		if _, ok := negativeTerms[token]; ok {
			negative++
		}
	}

	hits := positive + negative
	score := 0.0
	if hits > 0 {
		score = float64(positive-negative) / float64(hits)
	}
	return SentimentScore{
		Score: score,
		Label: sentimentLabel(score),
		Hits:  hits,
	}
}

func sentimentLabel(score float64) string {
	switch {
	case score > sentimentThreshold:
		return SentimentPositive
	case score < -sentimentThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
