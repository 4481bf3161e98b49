package task

import (
	"time"

	"github.com/google/uuid"
)

// Priority determines which queue a task waits in. All queued high-priority
// tasks are dispatched before any normal-priority task; within a class,
// dispatch order is submission order.
type Priority string

// Possible task priorities
const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// OverflowPolicy controls what happens to a submission that arrives while
// the queue is at its configured depth limit.
type OverflowPolicy string

// Possible overflow policies
const (
	// OverflowReject fails the submission immediately with ErrQueueFull.
	OverflowReject OverflowPolicy = "reject"

	// OverflowBlock parks the submission and admits it as the queue drains.
	OverflowBlock OverflowPolicy = "block"
)

// Spec describes one task to submit: the registered type tag, a payload of
// the type declared at registration, and an optional priority. A zero
// Priority means PriorityNormal.
type Spec struct {
	Type     string
	Payload  any
	Priority Priority
}

// Result is the successful outcome of one task.
type Result struct {
	// TaskID identifies the task this result belongs to.
	TaskID uuid.UUID

	// Type is the task type tag the handler was registered under.
	Type string

	// Value is whatever the handler returned.
	Value any

	// Duration is the wall-clock time the handler ran for.
	Duration time.Duration

	// UnitID is the execution unit that ran the task.
	UnitID int
}

// BatchResult aggregates the outcome of a SubmitBatch call. Results and
// Errors are index-aligned with the submitted specs: a slot that failed
// holds a zero Result and a non-nil error.
type BatchResult struct {
	Results    []Result
	Errors     []error
	Successful int
	Failed     int
}

// Progress describes one settled task within a streaming batch.
type Progress struct {
	// Completed is the number of tasks settled so far, Total the overall
	// count, and Fraction their ratio.
	Completed int
	Total     int
	Fraction  float64

	// Batch is the 1-based index of the pool-sized chunk being processed.
	Batch int

	// TaskID identifies the settled task when it produced a result.
	TaskID uuid.UUID

	// Result holds the outcome on success; Err is set on failure.
	Result Result
	Err    error
}

// ProgressFunc receives a Progress after each task in a streaming batch
// settles. It is invoked synchronously from the submitting goroutine.
type ProgressFunc func(Progress)

// queuedTask is the pool-internal representation of a submitted task.
// All fields except payload are owned by the coordinator goroutine; the
// payload reference is handed to exactly one execution unit at a time.
type queuedTask struct {
	id         uuid.UUID
	taskType   string
	payload    any
	priority   Priority
	pending    *Pending
	createdAt  time.Time
	assignedAt time.Time
	unitID     int
	retried    bool
}

// isValidPriority checks if the given priority is a valid Priority.
func isValidPriority(p Priority) bool {
	switch p {
	case PriorityNormal, PriorityHigh:
		return true
	default:
		return false
	}
}

// isValidOverflowPolicy checks if the given policy is a valid OverflowPolicy.
func isValidOverflowPolicy(p OverflowPolicy) bool {
	switch p {
	case OverflowReject, OverflowBlock:
		return true
	default:
		return false
	}
}
