package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/task"
)

// Common request/response structures

// TokenRequest defines the payload for the token issue endpoint.
type TokenRequest struct {
	APIKey string `json:"api_key" validate:"required,min=1"`
}

// TokenResponse defines the successful response for the token issue endpoint.
type TokenResponse struct {
	// ClientID identifies the client session the token was minted for
	ClientID uuid.UUID `json:"client_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// SubmitTaskRequest defines the payload for submitting a single task.
// Payload stays raw here; it is decoded into the Go type registered for
// Type before submission.
type SubmitTaskRequest struct {
	Type     string          `json:"type"     validate:"required,min=1"`
	Payload  json.RawMessage `json:"payload"  validate:"required"`
	Priority string          `json:"priority" validate:"omitempty,oneof=normal high"`
}

// SubmitBatchRequest defines the payload for submitting a group of tasks.
type SubmitBatchRequest struct {
	Tasks []SubmitTaskRequest `json:"tasks" validate:"required,min=1,dive"`
}

// TaskResultResponse represents the outcome of one executed task.
type TaskResultResponse struct {
	TaskID     string  `json:"task_id"`
	Type       string  `json:"type"`
	Value      any     `json:"value"`
	DurationMS float64 `json:"duration_ms"`
	UnitID     int     `json:"unit_id"`
}

// BatchSlotResponse represents one settled slot of a batch, index-aligned
// with the submitted tasks. Exactly one of Result and Error is set.
type BatchSlotResponse struct {
	Result *TaskResultResponse `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// BatchResponse represents the aggregate outcome of a batch submission.
type BatchResponse struct {
	Results    []BatchSlotResponse `json:"results"`
	Successful int                 `json:"successful"`
	Failed     int                 `json:"failed"`
}

// RecordDTO is one conversation turn in a record-mode run request.
type RecordDTO struct {
	Speaker   string    `json:"speaker"   validate:"required,min=1"`
	Text      string    `json:"text"      validate:"required,min=1"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordsRunRequest defines the payload for starting a record-mode run.
type RecordsRunRequest struct {
	Records  []RecordDTO `json:"records"  validate:"required,min=1,dive"`
	Types    []string    `json:"types"    validate:"required,min=1,dive,min=1"`
	Priority string      `json:"priority" validate:"omitempty,oneof=normal high"`
}

// RunListResponse represents one page of recorded runs.
type RunListResponse struct {
	Runs   []RunResponse `json:"runs"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// RunResponse represents a recorded run.
type RunResponse struct {
	ID                string     `json:"id"`
	Mode              string     `json:"mode"`
	Status            string     `json:"status"`
	TotalProcessed    int        `json:"total_processed"`
	SuccessfulBatches int        `json:"successful_batches"`
	FailedBatches     int        `json:"failed_batches"`
	Throughput        float64    `json:"throughput"`
	SuccessRate       float64    `json:"success_rate"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// taskResultToResponse converts a task.Result to a TaskResultResponse
func taskResultToResponse(result task.Result) TaskResultResponse {
	return TaskResultResponse{
		TaskID:     result.TaskID.String(),
		Type:       result.Type,
		Value:      result.Value,
		DurationMS: float64(result.Duration.Microseconds()) / 1000.0,
		UnitID:     result.UnitID,
	}
}

// batchToResponse converts a task.BatchResult to a BatchResponse. Slot
// errors are redacted strings; full errors never leave the server.
func batchToResponse(batch *task.BatchResult, redactErr func(error) string) BatchResponse {
	slots := make([]BatchSlotResponse, len(batch.Results))
	for i := range batch.Results {
		if batch.Errors[i] != nil {
			slots[i] = BatchSlotResponse{Error: redactErr(batch.Errors[i])}
			continue
		}
		result := taskResultToResponse(batch.Results[i])
		slots[i] = BatchSlotResponse{Result: &result}
	}

	return BatchResponse{
		Results:    slots,
		Successful: batch.Successful,
		Failed:     batch.Failed,
	}
}

// runToResponse converts a domain.Run to a RunResponse
func runToResponse(run *domain.Run) RunResponse {
	response := RunResponse{
		ID:                run.ID.String(),
		Mode:              string(run.Mode),
		Status:            string(run.Status),
		TotalProcessed:    run.TotalProcessed,
		SuccessfulBatches: run.SuccessfulBatches,
		FailedBatches:     run.FailedBatches,
		Throughput:        run.Throughput,
		SuccessRate:       run.SuccessRate(),
		StartedAt:         run.StartedAt,
		CreatedAt:         run.CreatedAt,
	}
	if !run.CompletedAt.IsZero() {
		completedAt := run.CompletedAt
		response.CompletedAt = &completedAt
	}
	return response
}
