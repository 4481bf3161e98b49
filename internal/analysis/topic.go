package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/quillback/loglearn/internal/classify"
)

// TopicGeneral is assigned when no topic keyword matches.
const TopicGeneral = "general"

// topicKeywords maps each built-in topic to the tokens that vote for it.
var topicKeywords = map[string][]string{
	"performance": {"slow", "latency", "cpu", "memory", "load", "throughput", "profiling", "leak"},
	"errors":      {"error", "exception", "panic", "crash", "failed", "failure", "fatal", "stacktrace"},
	"network":     {"network", "connection", "socket", "dns", "http", "tcp", "timeout", "refused"},
	"database":    {"database", "query", "sql", "postgres", "migration", "transaction", "deadlock", "index"},
	"security":    {"auth", "authentication", "token", "password", "denied", "unauthorized", "certificate", "permission"},
	"deployment":  {"deploy", "deployment", "release", "rollback", "build", "pipeline", "container", "kubernetes"},
}

// TopicPayload is the input for topic_classification tasks.
type TopicPayload struct {
	Texts []string `json:"texts"`
	// Labels constrains the candidate topics when non-empty.
	Labels []string `json:"labels,omitempty"`
}

// Validate implements the pool's payload check.
func (p TopicPayload) Validate() error {
	if len(p.Texts) == 0 {
		return errors.New("topic payload requires at least one text")
	}
	return nil
}

// TopicResult is the outcome of one topic_classification task.
type TopicResult struct {
	// Assignments is index-aligned with the payload texts.
	Assignments []classify.Assignment `json:"assignments"`
	// Counts tallies assigned topics.
	Counts map[string]int `json:"counts"`
}

// topicHandler classifies texts, delegating to an injected classifier when
// one is configured and falling back to keyword voting otherwise.
type topicHandler struct {
	classifier classify.TopicClassifier
}

func (h *topicHandler) run(ctx context.Context, payload TopicPayload) (any, error) {
	var (
		assignments []classify.Assignment
		err         error
	)
	if h.classifier != nil {
		assignments, err = h.classifier.Classify(ctx, payload.Texts, payload.Labels)
		if err != nil {
			return nil, fmt.Errorf("classifying texts: %w", err)
		}
		if len(assignments) != len(payload.Texts) {
			return nil, fmt.Errorf("classifier returned %d assignments for %d texts", len(assignments), len(payload.Texts))
		}
	} else {
		assignments = classifyByKeywords(payload.Texts, payload.Labels)
	}

	counts := make(map[string]int)
	for _, assignment := range assignments {
		counts[assignment.Topic]++
	}
	return TopicResult{Assignments: assignments, Counts: counts}, nil
}

// classifyByKeywords assigns each text the topic with the most keyword
// matches. Confidence is the winning topic's share of all matches.
func classifyByKeywords(texts, labels []string) []classify.Assignment {
	candidates := topicKeywords
	if len(labels) > 0 {
		candidates = make(map[string][]string, len(labels))
		for _, label := range labels {
			if keywords, ok := topicKeywords[label]; ok {
				candidates[label] = keywords
			}
		}
	}

	assignments := make([]classify.Assignment, 0, len(texts))
	for _, text := range texts {
		tokens := make(map[string]struct{})
		for _, token := range tokenize(text) {
			tokens[token] = struct{}{}
		}

		best, bestMatches, totalMatches := TopicGeneral, 0, 0
		for topic, keywords := range candidates {
			matches := 0
			for _, keyword := range keywords {
				if _, ok := tokens[keyword]; ok {
					matches++
				}
			}
			totalMatches += matches
			if matches > bestMatches || (matches == bestMatches && matches > 0 && topic < best) {
				best, bestMatches = topic, matches
			}
		}

		confidence := 0.0
		if totalMatches > 0 {
			confidence = float64(bestMatches) / float64(totalMatches)
		}
		assignments = append(assignments, classify.Assignment{Topic: best, Confidence: confidence})
	}
	return assignments
}
