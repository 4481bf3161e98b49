package analysis

import (
	"context"
	"errors"

	"github.com/quillback/loglearn/internal/domain"
)

// DialoguePayload is the input for dialogue_pattern tasks.
type DialoguePayload struct {
	Turns []domain.ConversationTurn `json:"turns"`
}

// Validate implements the pool's payload check.
func (p DialoguePayload) Validate() error {
	if len(p.Turns) == 0 {
		return errors.New("dialogue payload requires at least one turn")
	}
	return nil
}

// DialogueResult is the outcome of one dialogue_pattern task.
type DialogueResult struct {
	Turns         int            `json:"turns"`
	Questions     int            `json:"questions"`
	Statements    int            `json:"statements"`
	QuestionRatio float64        `json:"question_ratio"`
	Speakers      map[string]int `json:"speakers"`
	// AvgWords is the mean token count per turn.
	AvgWords float64 `json:"avg_words"`
	// LongestTurn is the highest token count seen in a single turn.
	LongestTurn int `json:"longest_turn"`
}

// runDialogue derives turn-taking statistics from a conversation slice.
func runDialogue(ctx context.Context, payload DialoguePayload) (any, error) {
	result := DialogueResult{
		Turns:    len(payload.Turns),
		Speakers: make(map[string]int),
	}

	totalWords := 0
	for i := range payload.Turns {
		turn := &payload.Turns[i]
		if turn.IsQuestion() {
			result.Questions++
		} else {
			result.Statements++
		}
		result.Speakers[turn.Speaker]++

		words := len(tokenize(turn.Text))
		totalWords += words
		if words > result.LongestTurn {
			result.LongestTurn = words
		}
	}

	result.QuestionRatio = float64(result.Questions) / float64(result.Turns)
	result.AvgWords = float64(totalWords) / float64(result.Turns)

	return result, nil
}
