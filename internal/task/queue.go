package task

// priorityQueue holds queued tasks in two FIFO lists, one per priority
// class. It is owned by the pool's coordinator goroutine and performs no
// locking of its own.
type priorityQueue struct {
	high   []*queuedTask
	normal []*queuedTask
}

// push appends a task to the tail of its priority class.
func (q *priorityQueue) push(t *queuedTask) {
	if t.priority == PriorityHigh {
		q.high = append(q.high, t)
		return
	}
	q.normal = append(q.normal, t)
}

// pushFront puts a task at the head of its priority class, ahead of
// everything already queued there. Used when a crashed unit's task is
// re-admitted for its single retry.
func (q *priorityQueue) pushFront(t *queuedTask) {
	if t.priority == PriorityHigh {
		q.high = append([]*queuedTask{t}, q.high...)
		return
	}
	q.normal = append([]*queuedTask{t}, q.normal...)
}

// pop removes and returns the next task to dispatch: the oldest queued
// high-priority task, or the oldest normal one when no high is waiting.
// Returns nil when the queue is empty.
func (q *priorityQueue) pop() *queuedTask {
	if len(q.high) > 0 {
		t := q.high[0]
		q.high[0] = nil
		q.high = q.high[1:]
		return t
	}
	if len(q.normal) > 0 {
		t := q.normal[0]
		q.normal[0] = nil
		q.normal = q.normal[1:]
		return t
	}
	return nil
}

// drain removes and returns every queued task, high class first.
func (q *priorityQueue) drain() []*queuedTask {
	drained := make([]*queuedTask, 0, q.len())
	drained = append(drained, q.high...)
	drained = append(drained, q.normal...)
	q.high = nil
	q.normal = nil
	return drained
}

// len returns the total number of queued tasks across both classes.
func (q *priorityQueue) len() int {
	return len(q.high) + len(q.normal)
}
