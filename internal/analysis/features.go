package analysis

import (
	"context"
	"errors"
	"strings"
	"unicode"
)

// FeaturePayload is the input for feature_extraction tasks.
type FeaturePayload struct {
	Texts []string `json:"texts"`
}

// Validate implements the pool's payload check.
func (p FeaturePayload) Validate() error {
	if len(p.Texts) == 0 {
		return errors.New("feature payload requires at least one text")
	}
	return nil
}

// TextFeatures holds the shape features extracted from one text.
type TextFeatures struct {
	Length int `json:"length"`
	Words  int `json:"words"`
	// AvgWordLength is the mean rune length of the tokens.
	AvgWordLength float64 `json:"avg_word_length"`
	// UppercaseRatio, DigitRatio, and PunctRatio are shares of the
	// text's runes, each in [0, 1].
	UppercaseRatio float64 `json:"uppercase_ratio"`
	DigitRatio     float64 `json:"digit_ratio"`
	PunctRatio     float64 `json:"punct_ratio"`
	HasQuestion    bool    `json:"has_question"`
	HasURL         bool    `json:"has_url"`
}

// FeatureResult is the outcome of one feature_extraction task, with one
// feature vector per payload text in input order.
type FeatureResult struct {
	Features []TextFeatures `json:"features"`
}

// runFeatures extracts surface features from each text.
func runFeatures(ctx context.Context, payload FeaturePayload) (any, error) {
	result := FeatureResult{Features: make([]TextFeatures, 0, len(payload.Texts))}
	for _, text := range payload.Texts {
		result.Features = append(result.Features, extractFeatures(text))
	}
	return result, nil
}

func extractFeatures(text string) TextFeatures {
	features := TextFeatures{
		Length:      len([]rune(text)),
		HasQuestion: strings.Contains(text, "?"),
		HasURL:      strings.Contains(text, "http://") || strings.Contains(text, "https://"),
	}

	upper, digits, punct, total := 0, 0, 0, 0
	for _, r := range text {
		total++
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsDigit(r):
			digits++
		case unicode.IsPunct(r):
			punct++
		}
	}
	if total > 0 {
		features.UppercaseRatio = float64(upper) / float64(total)
		features.DigitRatio = float64(digits) / float64(total)
		features.PunctRatio = float64(punct) / float64(total)
	}

	tokens := tokenize(text)
	features.Words = len(tokens)
	if len(tokens) > 0 {
		runes := 0
		for _, token := range tokens {
			runes += len([]rune(token))
		}
		features.AvgWordLength = float64(runes) / float64(len(tokens))
	}

	return features
}
