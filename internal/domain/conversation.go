package domain

import (
	"errors"
	"strings"
	"time"
)

// Common validation errors for ConversationTurn
var (
	ErrEmptyTurnSpeaker = errors.New("conversation turn speaker cannot be empty")
	ErrEmptyTurnText    = errors.New("conversation turn text cannot be empty")
)

// ConversationTurn represents one utterance in a recorded dialogue:
// who spoke, what they said, and when. Turns are the record-mode input
// to the analysis pipeline.
type ConversationTurn struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewConversationTurn creates a ConversationTurn with the given speaker and
// text, stamping it with the current UTC time.
// Returns an error if validation fails.
func NewConversationTurn(speaker, text string) (ConversationTurn, error) {
	turn := ConversationTurn{
		Speaker:   speaker,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}

	if err := turn.Validate(); err != nil {
		return ConversationTurn{}, err
	}

	return turn, nil
}

// Validate checks if the ConversationTurn has valid data.
// Returns an error if any field fails validation.
func (t ConversationTurn) Validate() error {
	if strings.TrimSpace(t.Speaker) == "" {
		return ErrEmptyTurnSpeaker
	}

	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyTurnText
	}

	return nil
}

// IsQuestion reports whether the turn reads as a question, either by a
// trailing question mark or a leading interrogative word.
func (t ConversationTurn) IsQuestion() bool {
	text := strings.TrimSpace(t.Text)
	if strings.HasSuffix(text, "?") {
		return true
	}

	first, _, _ := strings.Cut(strings.ToLower(text), " ")
	switch first {
	case "who", "what", "when", "where", "why", "how", "is", "are", "do", "does", "can", "could", "should", "would":
		return true
	default:
		return false
	}
}
