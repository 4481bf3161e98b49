package task

import "time"

// MetricsRecorder receives pool lifecycle measurements. Implementations
// must be safe for calls from the coordinator goroutine; a nil recorder
// disables recording entirely.
type MetricsRecorder interface {
	// TaskSubmitted is called once per admitted task.
	TaskSubmitted(taskType string, priority Priority)

	// TaskCompleted is called once per settled task with its handler
	// duration. Rejections at shutdown are not reported here.
	TaskCompleted(taskType string, duration time.Duration, success bool)

	// UnitCrashed is called when an execution unit terminates abnormally.
	UnitCrashed(unitID int)

	// QueueDepth is called with the new depth after queue transitions.
	QueueDepth(depth int)
}
