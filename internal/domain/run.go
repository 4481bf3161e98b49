package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RunMode identifies which pipeline mode produced a run.
type RunMode string

// Possible run modes
const (
	RunModeLines   RunMode = "lines"
	RunModeRecords RunMode = "records"
	RunModeBulk    RunMode = "bulk"
)

// RunStatus represents the lifecycle state of a recorded run.
type RunStatus string

// Possible run status values
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Common validation errors for Run
var (
	ErrEmptyRunID       = errors.New("run ID cannot be empty")
	ErrInvalidRunMode   = errors.New("invalid run mode")
	ErrInvalidRunStatus = errors.New("invalid run status")
	ErrNegativeRunCount = errors.New("run counters cannot be negative")
)

// Run represents one completed (or failed) pipeline run as recorded for
// history. It captures the aggregate outcome, never the individual tasks;
// queue state is deliberately not persisted.
type Run struct {
	ID                uuid.UUID `json:"id"`
	Mode              RunMode   `json:"mode"`
	Status            RunStatus `json:"status"`
	TotalProcessed    int       `json:"total_processed"`
	SuccessfulBatches int       `json:"successful_batches"`
	FailedBatches     int       `json:"failed_batches"`
	Throughput        float64   `json:"throughput"`
	StartedAt         time.Time `json:"started_at"`
	CompletedAt       time.Time `json:"completed_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewRun creates a Run in the running state with a fresh ID and the given
// mode, stamping the start and creation times with the current UTC time.
// Returns an error if validation fails.
func NewRun(mode RunMode) (*Run, error) {
	now := time.Now().UTC()
	run := &Run{
		ID:        uuid.New(),
		Mode:      mode,
		Status:    RunStatusRunning,
		StartedAt: now,
		CreatedAt: now,
	}

	if err := run.Validate(); err != nil {
		return nil, err
	}

	return run, nil
}

// Validate checks if the Run has valid data.
// Returns an error if any field fails validation.
func (r *Run) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRunID
	}

	if !isValidRunMode(r.Mode) {
		return ErrInvalidRunMode
	}

	if !isValidRunStatus(r.Status) {
		return ErrInvalidRunStatus
	}

	if r.TotalProcessed < 0 || r.SuccessfulBatches < 0 || r.FailedBatches < 0 {
		return ErrNegativeRunCount
	}

	return nil
}

// Complete marks the run completed and records its aggregate counters and
// throughput. The completion time is stamped with the current UTC time.
func (r *Run) Complete(totalProcessed, successfulBatches, failedBatches int, throughput float64) {
	r.Status = RunStatusCompleted
	r.TotalProcessed = totalProcessed
	r.SuccessfulBatches = successfulBatches
	r.FailedBatches = failedBatches
	r.Throughput = throughput
	r.CompletedAt = time.Now().UTC()
}

// Fail marks the run failed and stamps the completion time.
func (r *Run) Fail() {
	r.Status = RunStatusFailed
	r.CompletedAt = time.Now().UTC()
}

// SuccessRate returns the fraction of batches that succeeded, or zero when
// the run dispatched no batches.
func (r *Run) SuccessRate() float64 {
	total := r.SuccessfulBatches + r.FailedBatches
	if total == 0 {
		return 0
	}
	return float64(r.SuccessfulBatches) / float64(total)
}

// isValidRunMode checks if the given mode is a valid RunMode.
func isValidRunMode(mode RunMode) bool {
	switch mode {
	case RunModeLines, RunModeRecords, RunModeBulk:
		return true
	default:
		return false
	}
}

// isValidRunStatus checks if the given status is a valid RunStatus.
func isValidRunStatus(status RunStatus) bool {
	switch status {
	case RunStatusRunning, RunStatusCompleted, RunStatusFailed:
		return true
	default:
		return false
	}
}
