// Package classify defines the topic classification boundary. The analysis
// package consumes this interface so topic assignment can be served by the
// built-in keyword heuristic or by an external model-backed classifier.
package classify

import "context"

// Assignment is one classified text: the chosen topic and the classifier's
// confidence in [0, 1].
type Assignment struct {
	Topic      string  `json:"topic"`
	Confidence float64 `json:"confidence"`
}

// TopicClassifier assigns a topic to each input text. Implementations must
// return exactly one Assignment per text, index-aligned with texts. labels
// constrains the candidate topics when non-empty; otherwise the classifier
// chooses from its own topic inventory.
type TopicClassifier interface {
	Classify(ctx context.Context, texts []string, labels []string) ([]Assignment, error)
}

// Func adapts a plain function to the TopicClassifier interface.
type Func func(ctx context.Context, texts []string, labels []string) ([]Assignment, error)

// Classify implements TopicClassifier.
func (f Func) Classify(ctx context.Context, texts []string, labels []string) ([]Assignment, error) {
	return f(ctx, texts, labels)
}
