package task

import (
	"fmt"
	"time"
)

// unit is the coordinator's record of one pool slot. The coordinator owns
// every field; the goroutine running the slot only ever sees the inbox
// channel it was started with and reports back on the shared results
// channel.
type unit struct {
	id      int
	inbox   chan *queuedTask
	alive   bool
	busy    bool
	current *queuedTask

	completed       uint64
	failed          uint64
	crashes         uint64
	totalProcessing time.Duration
}

// unitResult is what a unit goroutine reports after running one task.
type unitResult struct {
	unitID      int
	task        *queuedTask
	value       any
	err         error
	duration    time.Duration
	crashed     bool
	crashReason any
}

// runUnit is the goroutine body for one execution unit. It processes tasks
// from its inbox strictly one at a time; the coordinator never sends the
// next task until the previous result has been received. The goroutine
// exits when the inbox closes at shutdown, or immediately after reporting
// a crash, in which case the coordinator recreates the slot.
func (p *Pool) runUnit(id int, inbox <-chan *queuedTask) {
	defer p.wg.Done()

	p.logger.Debug("starting execution unit", "unit_id", id)

	for t := range inbox {
		res := p.executeTask(id, t)
		p.results <- res
		if res.crashed {
			return
		}
	}

	p.logger.Debug("execution unit stopped", "unit_id", id)
}

// executeTask looks up the task's handler and runs it, timing the call.
// A panic in the handler is recovered here and reported as a crash rather
// than unwinding into the pool. An unregistered type is a handler-level
// error, not a crash; submission normally catches it first, but the table
// is consulted again in case a task was queued against a different
// registry.
func (p *Pool) executeTask(id int, t *queuedTask) (res unitResult) {
	start := time.Now()
	res = unitResult{unitID: id, task: t}

	defer func() {
		res.duration = time.Since(start)
		if r := recover(); r != nil {
			res.crashed = true
			res.crashReason = r
			res.value = nil
		}
	}()

	reg, ok := p.registry.lookup(t.taskType)
	if !ok {
		res.err = fmt.Errorf("%w: %q", ErrUnknownTaskType, t.taskType)
		return res
	}

	res.value, res.err = reg.run(p.baseCtx, t.payload)
	return res
}
