package analysis

import (
	"fmt"

	"github.com/quillback/loglearn/internal/classify"
	"github.com/quillback/loglearn/internal/task"
)

// Config carries the collaborators the built-in handlers depend on.
type Config struct {
	// Classifier, when set, serves topic_classification instead of the
	// built-in keyword heuristic.
	Classifier classify.TopicClassifier
}

// NewRegistry builds a task registry with every built-in handler bound to
// its type tag.
func NewRegistry(cfg Config) (*task.Registry, error) {
	r := task.NewRegistry()
	topics := &topicHandler{classifier: cfg.Classifier}

	if err := task.Register(r, TypeSentimentAnalysis, runSentiment); err != nil {
		return nil, fmt.Errorf("registering %s: %w", TypeSentimentAnalysis, err)
	}
	if err := task.Register(r, TypeTopicClassification, topics.run); err != nil {
		return nil, fmt.Errorf("registering %s: %w", TypeTopicClassification, err)
	}
	if err := task.Register(r, TypeDialoguePattern, runDialogue); err != nil {
		return nil, fmt.Errorf("registering %s: %w", TypeDialoguePattern, err)
	}
	if err := task.Register(r, TypeLogFileProcessing, runLogFile); err != nil {
		return nil, fmt.Errorf("registering %s: %w", TypeLogFileProcessing, err)
	}
	if err := task.Register(r, TypeBatchLearning, runLearning); err != nil {
		return nil, fmt.Errorf("registering %s: %w", TypeBatchLearning, err)
	}
	if err := task.Register(r, TypeStatisticalAnalysis, runStatistics); err != nil {
		return nil, fmt.Errorf("registering %s: %w", TypeStatisticalAnalysis, err)
	}
	if err := task.Register(r, TypeDataCleaning, runCleaning); err != nil {
		return nil, fmt.Errorf("registering %s: %w", TypeDataCleaning, err)
	}
	if err := task.Register(r, TypeFeatureExtraction, runFeatures); err != nil {
		return nil, fmt.Errorf("registering %s: %w", TypeFeatureExtraction, err)
	}

	return r, nil
}
