package analysis

// Type tags for the built-in handlers. Tasks are submitted under these
// names and dispatched to the matching handler.
const (
	TypeSentimentAnalysis   = "sentiment_analysis"
	TypeTopicClassification = "topic_classification"
	TypeDialoguePattern     = "dialogue_pattern"
	TypeLogFileProcessing   = "log_file_processing"
	TypeBatchLearning       = "batch_learning"
	TypeStatisticalAnalysis = "statistical_analysis"
	TypeDataCleaning        = "data_cleaning"
	TypeFeatureExtraction   = "feature_extraction"
)

// Types returns all built-in type tags in registration order.
func Types() []string {
	return []string{
		TypeSentimentAnalysis,
		TypeTopicClassification,
		TypeDialoguePattern,
		TypeLogFileProcessing,
		TypeBatchLearning,
		TypeStatisticalAnalysis,
		TypeDataCleaning,
		TypeFeatureExtraction,
	}
}
