package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillback/loglearn/internal/domain"
)

func TestBatchPayloadCoversEveryType(t *testing.T) {
	t.Parallel()

	registry, err := NewRegistry(Config{})
	require.NoError(t, err)

	entries := []domain.LogEntry{
		{Source: "app.log", Raw: "ERROR: disk full", Level: domain.LogLevelError, Message: "disk full"},
		{Source: "app.log", Raw: "INFO: recovered", Level: domain.LogLevelInfo, Message: "recovered"},
	}

	for _, taskType := range Types() {
		payload, err := BatchPayload(taskType, entries)
		require.NoError(t, err, "building payload for %s", taskType)
		assert.NoError(t, registry.CheckPayload(taskType, payload), "admission check for %s", taskType)
	}
}

func TestBatchPayloadShapes(t *testing.T) {
	t.Parallel()

	timestamp := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	entries := []domain.LogEntry{
		{Source: "app.log", Raw: "WARN: queue backing up", Level: domain.LogLevelWarn, Message: "queue backing up", Timestamp: timestamp},
	}

	payload, err := BatchPayload(TypeSentimentAnalysis, entries)
	require.NoError(t, err)
	assert.Equal(t, SentimentPayload{Texts: []string{"queue backing up"}}, payload)

	payload, err = BatchPayload(TypeDataCleaning, entries)
	require.NoError(t, err)
	assert.Equal(t, CleaningPayload{Texts: []string{"WARN: queue backing up"}}, payload)

	payload, err = BatchPayload(TypeDialoguePattern, entries)
	require.NoError(t, err)
	dialogue, ok := payload.(DialoguePayload)
	require.True(t, ok)
	require.Len(t, dialogue.Turns, 1)
	assert.Equal(t, "app.log", dialogue.Turns[0].Speaker)
	assert.Equal(t, timestamp, dialogue.Turns[0].Timestamp)

	payload, err = BatchPayload(TypeStatisticalAnalysis, entries)
	require.NoError(t, err)
	stats, ok := payload.(StatsPayload)
	require.True(t, ok)
	assert.Equal(t, []float64{3}, stats.Values)

	_, err = BatchPayload("made_up_type", entries)
	assert.Error(t, err)
}

func TestTurnPayload(t *testing.T) {
	t.Parallel()

	registry, err := NewRegistry(Config{})
	require.NoError(t, err)

	turn := domain.ConversationTurn{Speaker: "user", Text: "why is the build failing?"}

	for _, taskType := range Types() {
		if taskType == TypeLogFileProcessing {
			continue
		}
		payload, err := TurnPayload(taskType, turn)
		require.NoError(t, err, "building payload for %s", taskType)
		assert.NoError(t, registry.CheckPayload(taskType, payload), "admission check for %s", taskType)
	}

	// Log file processing has no sensible single-record form.
	_, err = TurnPayload(TypeLogFileProcessing, turn)
	assert.Error(t, err)
}
