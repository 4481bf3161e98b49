package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RunCompletedEvent announces that a pipeline run reached a terminal state.
// It carries the run summary as opaque JSON so subscribers decode only what
// they need and the package stays independent of the pipeline types.
type RunCompletedEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// RunID identifies the run that completed
	RunID uuid.UUID `json:"run_id"`

	// Mode is the processing mode the run used
	Mode string `json:"mode"`

	// Failed marks runs that aborted on a dispatch error
	Failed bool `json:"failed"`

	// Summary contains the run statistics serialized as JSON
	Summary json.RawMessage `json:"summary"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalSummary decodes the event summary into the provided structure.
func (e *RunCompletedEvent) UnmarshalSummary(v any) error {
	return json.Unmarshal(e.Summary, v)
}

// NewRunCompletedEvent creates a RunCompletedEvent for the given run.
func NewRunCompletedEvent(runID uuid.UUID, mode string, failed bool, summary any) (*RunCompletedEvent, error) {
	summaryBytes, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return &RunCompletedEvent{
		ID:        uuid.New(),
		RunID:     runID,
		Mode:      mode,
		Failed:    failed,
		Summary:   summaryBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *RunCompletedEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of
// handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *RunCompletedEvent) error
}
