package domain

import (
	"errors"
	"strings"
	"time"
)

// LogLevel classifies the severity recorded on a log line.
type LogLevel string

// Recognized log levels, ordered from least to most severe.
const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarn    LogLevel = "warn"
	LogLevelError   LogLevel = "error"
	LogLevelUnknown LogLevel = "unknown"
)

// Common validation errors for LogEntry
var (
	ErrEmptyLogEntrySource = errors.New("log entry source cannot be empty")
	ErrEmptyLogEntryRaw    = errors.New("log entry raw text cannot be empty")
)

// LogEntry represents a single line captured from a log source,
// together with whatever structure could be recovered from it.
// Entries are value objects; they carry no identity beyond their content.
type LogEntry struct {
	Source    string    `json:"source"`
	Raw       string    `json:"raw"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLogEntry creates a LogEntry from a raw line, deriving the level and
// message with ParseLogLevel. The timestamp is left zero unless the caller
// recovers one from the line.
// Returns an error if validation fails.
func NewLogEntry(source, raw string) (LogEntry, error) {
	level, message := ParseLogLevel(raw)
	entry := LogEntry{
		Source:  source,
		Raw:     raw,
		Level:   level,
		Message: message,
	}

	if err := entry.Validate(); err != nil {
		return LogEntry{}, err
	}

	return entry, nil
}

// Validate checks if the LogEntry has valid data.
// Returns an error if any field fails validation.
func (e LogEntry) Validate() error {
	if strings.TrimSpace(e.Source) == "" {
		return ErrEmptyLogEntrySource
	}

	if strings.TrimSpace(e.Raw) == "" {
		return ErrEmptyLogEntryRaw
	}

	return nil
}

// ParseLogLevel scans a raw line for a leading or bracketed level token and
// returns the level plus the line with that token stripped. Lines without a
// recognizable token come back as LogLevelUnknown with the text untouched.
func ParseLogLevel(raw string) (LogLevel, string) {
	trimmed := strings.TrimSpace(raw)
	upper := strings.ToUpper(trimmed)

	for _, candidate := range []struct {
		token string
		level LogLevel
	}{
		{"DEBUG", LogLevelDebug},
		{"INFO", LogLevelInfo},
		{"WARNING", LogLevelWarn},
		{"WARN", LogLevelWarn},
		{"ERROR", LogLevelError},
		{"ERR", LogLevelError},
	} {
		for _, prefix := range []string{candidate.token + ":", candidate.token + " ", "[" + candidate.token + "]"} {
			if strings.HasPrefix(upper, prefix) {
				return candidate.level, strings.TrimSpace(trimmed[len(prefix):])
			}
		}
	}

	return LogLevelUnknown, trimmed
}
