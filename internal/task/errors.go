package task

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common errors returned by the pool and registry
var (
	// ErrPoolShutdown is returned for submissions made after shutdown began
	// and for queued tasks that were rejected when the pool drained.
	ErrPoolShutdown = errors.New("pool is shut down")

	// ErrQueueFull is returned under the reject overflow policy when the
	// queue has reached its configured depth limit.
	ErrQueueFull = errors.New("task queue is full")

	// ErrUnknownTaskType is returned when a task names a type with no
	// registered handler.
	ErrUnknownTaskType = errors.New("unknown task type")

	// ErrInvalidPayload is returned when a payload does not match the type
	// registered for the task, or fails the payload's own validation.
	ErrInvalidPayload = errors.New("invalid task payload")
)

// HandlerError reports a task whose handler returned an error. The failure
// is scoped to the one task; the execution unit and pool stay healthy.
type HandlerError struct {
	TaskType string
	TaskID   uuid.UUID
	Err      error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler for %s task %s failed: %v", e.TaskType, e.TaskID, e.Err)
}

// Unwrap returns the underlying handler error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// UnitCrashError reports that the execution unit running a task terminated
// abnormally. Every task assigned to the unit at crash time is rejected with
// this error; the unit itself is recreated after the configured delay.
type UnitCrashError struct {
	UnitID int
	TaskID uuid.UUID
	Reason string
}

// Error implements the error interface.
func (e *UnitCrashError) Error() string {
	return fmt.Sprintf("execution unit %d crashed while running task %s: %s", e.UnitID, e.TaskID, e.Reason)
}
