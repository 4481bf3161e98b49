package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/quillback/loglearn/internal/domain"
)

// LogFilePayload is the input for log_file_processing tasks.
type LogFilePayload struct {
	Entries []domain.LogEntry `json:"entries"`
}

// Validate implements the pool's payload check.
func (p LogFilePayload) Validate() error {
	if len(p.Entries) == 0 {
		return errors.New("log file payload requires at least one entry")
	}
	return nil
}

// LogFileResult is the outcome of one log_file_processing task.
type LogFileResult struct {
	Entries int `json:"entries"`
	// ByLevel counts entries per recognized level.
	ByLevel map[string]int `json:"by_level"`
	// ErrorRate is the share of entries at error level, in [0, 1].
	ErrorRate float64 `json:"error_rate"`
	// Sources counts entries per originating source.
	Sources map[string]int `json:"sources"`
	// FirstTimestamp and LastTimestamp bound the timestamped entries.
	// Both are zero when no entry carries a timestamp.
	FirstTimestamp time.Time `json:"first_timestamp"`
	LastTimestamp  time.Time `json:"last_timestamp"`
}

// runLogFile aggregates level, source, and time-range statistics over a
// batch of parsed log entries.
func runLogFile(ctx context.Context, payload LogFilePayload) (any, error) {
	result := LogFileResult{
		Entries: len(payload.Entries),
		ByLevel: make(map[string]int),
		Sources: make(map[string]int),
	}

	errorCount := 0
	for i := range payload.Entries {
		entry := &payload.Entries[i]
		result.ByLevel[string(entry.Level)]++
		result.Sources[entry.Source]++
		if entry.Level == domain.LogLevelError {
			errorCount++
		}

		if entry.Timestamp.IsZero() {
			continue
		}
		if result.FirstTimestamp.IsZero() || entry.Timestamp.Before(result.FirstTimestamp) {
			result.FirstTimestamp = entry.Timestamp
		}
		if entry.Timestamp.After(result.LastTimestamp) {
			result.LastTimestamp = entry.Timestamp
		}
	}

	result.ErrorRate = float64(errorCount) / float64(result.Entries)
	return result, nil
}
