package task

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queuedForTest(priority Priority) *queuedTask {
	id := uuid.New()
	return &queuedTask{id: id, taskType: "mock", priority: priority, pending: newPending(id)}
}

func TestPriorityQueue_FIFOWithinClass(t *testing.T) {
	t.Parallel()

	q := &priorityQueue{}
	first := queuedForTest(PriorityNormal)
	second := queuedForTest(PriorityNormal)
	third := queuedForTest(PriorityNormal)

	q.push(first)
	q.push(second)
	q.push(third)

	require.Equal(t, 3, q.len())
	assert.Same(t, first, q.pop())
	assert.Same(t, second, q.pop())
	assert.Same(t, third, q.pop())
	assert.Nil(t, q.pop())
}

func TestPriorityQueue_HighDrainsFirst(t *testing.T) {
	t.Parallel()

	q := &priorityQueue{}
	normal1 := queuedForTest(PriorityNormal)
	high1 := queuedForTest(PriorityHigh)
	normal2 := queuedForTest(PriorityNormal)
	high2 := queuedForTest(PriorityHigh)

	q.push(normal1)
	q.push(high1)
	q.push(normal2)
	q.push(high2)

	assert.Same(t, high1, q.pop())
	assert.Same(t, high2, q.pop())
	assert.Same(t, normal1, q.pop())
	assert.Same(t, normal2, q.pop())
}

func TestPriorityQueue_PushFront(t *testing.T) {
	t.Parallel()

	q := &priorityQueue{}
	queued := queuedForTest(PriorityNormal)
	retried := queuedForTest(PriorityNormal)
	high := queuedForTest(PriorityHigh)

	q.push(queued)
	q.push(high)
	q.pushFront(retried)

	// High still outranks a front-of-class normal task
	assert.Same(t, high, q.pop())
	assert.Same(t, retried, q.pop())
	assert.Same(t, queued, q.pop())
}

func TestPriorityQueue_Drain(t *testing.T) {
	t.Parallel()

	q := &priorityQueue{}
	normal := queuedForTest(PriorityNormal)
	high := queuedForTest(PriorityHigh)

	q.push(normal)
	q.push(high)

	drained := q.drain()
	require.Len(t, drained, 2)
	assert.Same(t, high, drained[0])
	assert.Same(t, normal, drained[1])
	assert.Equal(t, 0, q.len())
	assert.Nil(t, q.pop())
}
