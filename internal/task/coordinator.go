package task

import (
	"fmt"
	"time"
)

// submitRequest carries a validated task from a submitting goroutine to
// the coordinator. The coordinator replies on the buffered channel with
// nil once the task is admitted, or with the rejection error.
type submitRequest struct {
	task  *queuedTask
	reply chan error
}

// run is the pool's coordinator goroutine. It is the only goroutine that
// touches the queue, the in-flight map, the unit records, and the
// counters, so none of them need locks. Everything else talks to it
// through channels.
func (p *Pool) run() {
	defer close(p.stopped)

	for {
		select {
		case req := <-p.submitCh:
			p.handleSubmit(req)

		case res := <-p.results:
			p.handleResult(res)

		case id := <-p.restartCh:
			p.handleRestart(id)

		case reply := <-p.statsCh:
			reply <- p.snapshot()

		case done := <-p.shutdownCh:
			p.beginShutdown(done)
		}

		if p.draining && len(p.inFlight) == 0 {
			p.finish()
			return
		}
	}
}

// handleSubmit admits a task into the queue, parks it, or rejects it,
// depending on drain state, queue depth, and the overflow policy.
func (p *Pool) handleSubmit(req submitRequest) {
	if p.draining {
		req.reply <- fmt.Errorf("submission rejected: %w", ErrPoolShutdown)
		return
	}

	if p.config.MaxQueueDepth > 0 && p.queue.len() >= p.config.MaxQueueDepth {
		if p.config.OverflowPolicy == OverflowBlock {
			p.waiting = append(p.waiting, req)
			p.logger.Debug("submission parked, queue at depth limit",
				"task_id", req.task.id,
				"task_type", req.task.taskType,
				"waiting", len(p.waiting))
			return
		}
		req.reply <- fmt.Errorf("%w: queue depth %d reached", ErrQueueFull, p.config.MaxQueueDepth)
		return
	}

	p.admit(req.task)
	req.reply <- nil
	p.pump()
}

// admit pushes a task into the queue and updates the admission counters.
func (p *Pool) admit(t *queuedTask) {
	p.queue.push(t)
	p.submitted++
	p.submittedByType[t.taskType]++
	p.submittedByPriority[t.priority]++

	if p.metrics != nil {
		p.metrics.TaskSubmitted(t.taskType, t.priority)
		p.metrics.QueueDepth(p.queue.len())
	}

	p.logger.Debug("task enqueued",
		"task_id", t.id,
		"task_type", t.taskType,
		"priority", t.priority,
		"queue_depth", p.queue.len())
}

// pump is the work-conserving dispatch loop: assign queued tasks to idle
// units, then admit parked submissions as queue capacity frees up, and
// repeat until neither makes progress.
func (p *Pool) pump() {
	for {
		moved := false

		for p.queue.len() > 0 {
			u := p.idleUnit()
			if u == nil {
				break
			}
			p.assign(u, p.queue.pop())
			moved = true
		}

		for len(p.waiting) > 0 && (p.config.MaxQueueDepth <= 0 || p.queue.len() < p.config.MaxQueueDepth) {
			req := p.waiting[0]
			p.waiting[0] = submitRequest{}
			p.waiting = p.waiting[1:]
			p.admit(req.task)
			req.reply <- nil
			moved = true
		}

		if !moved {
			return
		}
	}
}

// idleUnit returns the first alive, idle unit in slot order, or nil when
// every unit is busy or down. Assignment deliberately scans for the first
// free slot; it does not balance accumulated load across units.
func (p *Pool) idleUnit() *unit {
	for _, u := range p.units {
		if u.alive && !u.busy {
			return u
		}
	}
	return nil
}

// assign hands a task to an idle unit. The unit's inbox holds one task and
// is known to be empty here, so the send cannot block the coordinator.
func (p *Pool) assign(u *unit, t *queuedTask) {
	t.assignedAt = time.Now().UTC()
	t.unitID = u.id
	u.busy = true
	u.current = t
	p.inFlight[t.id] = t
	u.inbox <- t

	if p.metrics != nil {
		p.metrics.QueueDepth(p.queue.len())
	}

	p.logger.Debug("task assigned",
		"task_id", t.id,
		"task_type", t.taskType,
		"unit_id", u.id)
}

// handleResult settles one task: resolve its pending handle, update the
// unit record, and keep dispatching.
func (p *Pool) handleResult(res unitResult) {
	u := p.units[res.unitID]
	t := res.task

	delete(p.inFlight, t.id)
	u.totalProcessing += res.duration

	switch {
	case res.crashed:
		p.handleCrash(u, t, res)

	case res.err != nil:
		u.busy = false
		u.current = nil
		u.failed++
		p.failed++
		t.pending.resolve(Result{}, &HandlerError{TaskType: t.taskType, TaskID: t.id, Err: res.err})

		if p.metrics != nil {
			p.metrics.TaskCompleted(t.taskType, res.duration, false)
		}
		p.logger.Error("task execution failed",
			"task_id", t.id,
			"task_type", t.taskType,
			"unit_id", u.id,
			"error", res.err)

	default:
		u.busy = false
		u.current = nil
		u.completed++
		p.completed++
		t.pending.resolve(Result{
			TaskID:   t.id,
			Type:     t.taskType,
			Value:    res.value,
			Duration: res.duration,
			UnitID:   u.id,
		}, nil)

		if p.metrics != nil {
			p.metrics.TaskCompleted(t.taskType, res.duration, true)
		}
		p.logger.Debug("task completed",
			"task_id", t.id,
			"task_type", t.taskType,
			"unit_id", u.id,
			"duration", res.duration,
			"queue_wait", t.assignedAt.Sub(t.createdAt))
	}

	if !p.draining {
		p.pump()
	}
}

// handleCrash contains an abnormal unit termination: the unit is marked
// dead and scheduled for recreation, and its task is either rejected or,
// when crash retry is enabled, re-queued at the head of its class for one
// more attempt.
func (p *Pool) handleCrash(u *unit, t *queuedTask, res unitResult) {
	u.busy = false
	u.current = nil
	u.alive = false
	u.crashes++
	p.crashes++

	reason := fmt.Sprint(res.crashReason)
	p.logger.Error("execution unit crashed",
		"unit_id", u.id,
		"task_id", t.id,
		"task_type", t.taskType,
		"reason", reason)

	if p.metrics != nil {
		p.metrics.UnitCrashed(u.id)
	}

	if p.config.RetryCrashed && !t.retried && !p.draining {
		t.retried = true
		p.queue.pushFront(t)
		p.logger.Info("re-queued task from crashed unit",
			"task_id", t.id,
			"task_type", t.taskType)
	} else {
		t.pending.resolve(Result{}, &UnitCrashError{UnitID: u.id, TaskID: t.id, Reason: reason})
		if p.metrics != nil {
			p.metrics.TaskCompleted(t.taskType, res.duration, false)
		}
	}

	if !p.draining {
		p.scheduleRestart(u.id)
	}
}

// scheduleRestart arranges for a dead unit to be recreated after the
// configured delay. The restart channel is buffered to the pool size, so
// the timer callback can never block even if the pool stops first.
func (p *Pool) scheduleRestart(id int) {
	delay := p.config.RestartDelay
	p.logger.Info("scheduling execution unit restart",
		"unit_id", id,
		"delay", delay)

	time.AfterFunc(delay, func() {
		p.restartCh <- id
	})
}

// handleRestart recreates a crashed unit in its original slot with a fresh
// goroutine and inbox. Lifetime counters stay on the unit record. Restarts
// that arrive while draining are ignored; there is no work left to give
// the slot.
func (p *Pool) handleRestart(id int) {
	if p.draining {
		return
	}

	u := p.units[id]
	if u.alive {
		return
	}

	inbox := make(chan *queuedTask, 1)
	u.inbox = inbox
	u.alive = true
	u.busy = false

	p.wg.Add(1)
	go p.runUnit(id, inbox)

	p.logger.Info("execution unit restarted", "unit_id", id)
	p.pump()
}

// beginShutdown flips the pool into the draining state: queued tasks and
// parked submissions are rejected immediately, new submissions bounce, and
// the run loop keeps settling in-flight tasks until none remain.
func (p *Pool) beginShutdown(done chan struct{}) {
	p.shutdownDone = append(p.shutdownDone, done)
	if p.draining {
		return
	}
	p.draining = true

	queued := p.queue.drain()
	for _, t := range queued {
		p.rejected++
		t.pending.resolve(Result{}, fmt.Errorf("task %s rejected: %w", t.id, ErrPoolShutdown))
	}

	parked := p.waiting
	p.waiting = nil
	for _, req := range parked {
		p.rejected++
		req.reply <- fmt.Errorf("submission rejected: %w", ErrPoolShutdown)
	}

	if p.metrics != nil {
		p.metrics.QueueDepth(0)
	}

	p.logger.Info("pool shutting down",
		"rejected_queued", len(queued),
		"rejected_waiting", len(parked),
		"in_flight", len(p.inFlight))
}

// finish runs once the drain is complete: stop every surviving unit, wait
// for their goroutines, capture the final stats snapshot, and release the
// shutdown waiters.
func (p *Pool) finish() {
	for _, u := range p.units {
		if u.alive {
			close(u.inbox)
			u.alive = false
		}
	}
	p.wg.Wait()

	p.finalStats = p.snapshot()

	for _, done := range p.shutdownDone {
		close(done)
	}

	p.logger.Info("pool stopped",
		"completed", p.completed,
		"failed", p.failed,
		"crashes", p.crashes,
		"rejected", p.rejected)
}

// snapshot builds a PoolStats from coordinator-owned state. Maps are
// copied so the caller can hold the snapshot without racing the pool.
func (p *Pool) snapshot() PoolStats {
	units := make([]UnitStats, len(p.units))
	for i, u := range p.units {
		ran := u.completed + u.failed + u.crashes
		var avg time.Duration
		if ran > 0 {
			avg = u.totalProcessing / time.Duration(ran)
		}
		units[i] = UnitStats{
			ID:              u.id,
			Busy:            u.busy,
			Alive:           u.alive,
			TasksCompleted:  u.completed,
			Failures:        u.failed,
			Crashes:         u.crashes,
			TotalProcessing: u.totalProcessing,
			AvgProcessing:   avg,
		}
	}

	byType := make(map[string]uint64, len(p.submittedByType))
	for k, v := range p.submittedByType {
		byType[k] = v
	}
	byPriority := make(map[Priority]uint64, len(p.submittedByPriority))
	for k, v := range p.submittedByPriority {
		byPriority[k] = v
	}

	return PoolStats{
		QueueDepth:          p.queue.len(),
		QueuedHigh:          len(p.queue.high),
		QueuedNormal:        len(p.queue.normal),
		Waiting:             len(p.waiting),
		InFlight:            len(p.inFlight),
		Submitted:           p.submitted,
		Completed:           p.completed,
		Failed:              p.failed,
		Crashes:             p.crashes,
		Rejected:            p.rejected,
		SubmittedByType:     byType,
		SubmittedByPriority: byPriority,
		Units:               units,
	}
}
