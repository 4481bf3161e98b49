package analysis

import (
	"fmt"

	"github.com/quillback/loglearn/internal/domain"
)

// BatchPayload builds the typed payload for one task type over a batch of
// extracted log entries. Its signature matches the pipeline's line-mode
// payload builder, so it can be passed straight into a line-stream run.
func BatchPayload(taskType string, entries []domain.LogEntry) (any, error) {
	switch taskType {
	case TypeSentimentAnalysis:
		return SentimentPayload{Texts: entryMessages(entries)}, nil
	case TypeTopicClassification:
		return TopicPayload{Texts: entryMessages(entries)}, nil
	case TypeDialoguePattern:
		return DialoguePayload{Turns: entriesAsTurns(entries)}, nil
	case TypeLogFileProcessing:
		return LogFilePayload{Entries: entries}, nil
	case TypeBatchLearning:
		return LearningPayload{Texts: entryMessages(entries)}, nil
	case TypeStatisticalAnalysis:
		return StatsPayload{Values: entryWordCounts(entries)}, nil
	case TypeDataCleaning:
		return CleaningPayload{Texts: entryRaw(entries)}, nil
	case TypeFeatureExtraction:
		return FeaturePayload{Texts: entryMessages(entries)}, nil
	default:
		return nil, fmt.Errorf("no batch payload for task type %q", taskType)
	}
}

// TurnPayload builds the typed payload for one task type over a single
// conversation turn. Its signature matches the pipeline's record-mode
// payload builder. TypeLogFileProcessing has no record form and is
// rejected like an unknown type.
func TurnPayload(taskType string, turn domain.ConversationTurn) (any, error) {
	switch taskType {
	case TypeSentimentAnalysis:
		return SentimentPayload{Texts: []string{turn.Text}}, nil
	case TypeTopicClassification:
		return TopicPayload{Texts: []string{turn.Text}}, nil
	case TypeDialoguePattern:
		return DialoguePayload{Turns: []domain.ConversationTurn{turn}}, nil
	case TypeBatchLearning:
		return LearningPayload{Texts: []string{turn.Text}}, nil
	case TypeStatisticalAnalysis:
		return StatsPayload{Values: []float64{float64(len(tokenize(turn.Text)))}}, nil
	case TypeDataCleaning:
		return CleaningPayload{Texts: []string{turn.Text}}, nil
	case TypeFeatureExtraction:
		return FeaturePayload{Texts: []string{turn.Text}}, nil
	default:
		return nil, fmt.Errorf("no record payload for task type %q", taskType)
	}
}

func entryMessages(entries []domain.LogEntry) []string {
	texts := make([]string, len(entries))
	for i := range entries {
		texts[i] = entries[i].Message
	}
	return texts
}

func entryRaw(entries []domain.LogEntry) []string {
	texts := make([]string, len(entries))
	for i := range entries {
		texts[i] = entries[i].Raw
	}
	return texts
}

// entryWordCounts turns each entry's message into its token count, giving
// the statistics handler a numeric series to summarize.
func entryWordCounts(entries []domain.LogEntry) []float64 {
	values := make([]float64, len(entries))
	for i := range entries {
		values[i] = float64(len(tokenize(entries[i].Message)))
	}
	return values
}

// entriesAsTurns reshapes log entries into conversation turns, with the
// entry source standing in for the speaker.
func entriesAsTurns(entries []domain.LogEntry) []domain.ConversationTurn {
	turns := make([]domain.ConversationTurn, len(entries))
	for i := range entries {
		turns[i] = domain.ConversationTurn{
			Speaker:   entries[i].Source,
			Text:      entries[i].Message,
			Timestamp: entries[i].Timestamp,
		}
	}
	return turns
}
