package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewRun(t *testing.T) {
	t.Parallel() // Enable parallel execution
	// Test valid run creation
	run, err := NewRun(RunModeLines)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if run.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if run.Mode != RunModeLines {
		t.Errorf("Expected mode %s, got %s", RunModeLines, run.Mode)
	}

	if run.Status != RunStatusRunning {
		t.Errorf("Expected status %s, got %s", RunStatusRunning, run.Status)
	}

	if run.StartedAt.IsZero() {
		t.Error("Expected non-zero StartedAt time")
	}

	// Test invalid mode
	_, err = NewRun("carrier_pigeon")
	if err != ErrInvalidRunMode {
		t.Errorf("Expected error %v, got %v", ErrInvalidRunMode, err)
	}
}

func TestRunValidate(t *testing.T) {
	t.Parallel() // Enable parallel execution
	validRun := Run{
		ID:     uuid.New(),
		Mode:   RunModeRecords,
		Status: RunStatusCompleted,
	}

	// Test valid run
	if err := validRun.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Test invalid ID
	invalidRun := validRun
	invalidRun.ID = uuid.Nil
	if err := invalidRun.Validate(); err != ErrEmptyRunID {
		t.Errorf("Expected error %v, got %v", ErrEmptyRunID, err)
	}

	// Test invalid status
	invalidRun = validRun
	invalidRun.Status = "paused"
	if err := invalidRun.Validate(); err != ErrInvalidRunStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidRunStatus, err)
	}

	// Test negative counters
	invalidRun = validRun
	invalidRun.TotalProcessed = -1
	if err := invalidRun.Validate(); err != ErrNegativeRunCount {
		t.Errorf("Expected error %v, got %v", ErrNegativeRunCount, err)
	}
}

func TestRunCompleteAndSuccessRate(t *testing.T) {
	t.Parallel() // Enable parallel execution
	run, err := NewRun(RunModeBulk)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	run.Complete(100, 9, 1, 12.5)

	if run.Status != RunStatusCompleted {
		t.Errorf("Expected status %s, got %s", RunStatusCompleted, run.Status)
	}

	if run.CompletedAt.IsZero() {
		t.Error("Expected non-zero CompletedAt time")
	}

	if rate := run.SuccessRate(); rate != 0.9 {
		t.Errorf("Expected success rate 0.9, got %v", rate)
	}

	// A run with no batches has no meaningful rate
	empty, err := NewRun(RunModeBulk)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rate := empty.SuccessRate(); rate != 0 {
		t.Errorf("Expected success rate 0, got %v", rate)
	}

	// Fail stamps the completion time too
	failed, err := NewRun(RunModeLines)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	failed.Fail()
	if failed.Status != RunStatusFailed {
		t.Errorf("Expected status %s, got %s", RunStatusFailed, failed.Status)
	}
	if failed.CompletedAt.IsZero() {
		t.Error("Expected non-zero CompletedAt time")
	}
}
