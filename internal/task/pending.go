package task

import (
	"context"

	"github.com/google/uuid"
)

// outcome carries a task's final result or error from the coordinator to
// the goroutine waiting on the Pending handle.
type outcome struct {
	result Result
	err    error
}

// Pending is the handle returned by Enqueue for a task that has been
// admitted but not yet settled. The coordinator resolves it exactly once,
// with either the handler's result or a rejection error.
type Pending struct {
	taskID uuid.UUID
	done   chan outcome
}

// newPending creates an unresolved handle for the given task ID.
func newPending(taskID uuid.UUID) *Pending {
	return &Pending{
		taskID: taskID,
		done:   make(chan outcome, 1),
	}
}

// TaskID returns the ID of the task this handle tracks.
func (p *Pending) TaskID() uuid.UUID {
	return p.taskID
}

// Wait blocks until the task settles or ctx is done, whichever comes
// first. Cancelling ctx abandons only the wait: the task itself still runs
// to completion, and a later Wait call can still collect the outcome. The
// outcome is delivered to at most one waiter.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case o := <-p.done:
		return o.result, o.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// resolve delivers the task's outcome. Called exactly once, by the
// coordinator; the buffered channel makes the send non-blocking.
func (p *Pending) resolve(result Result, err error) {
	p.done <- outcome{result: result, err: err}
}
