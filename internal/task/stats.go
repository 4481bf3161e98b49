package task

import "time"

// UnitStats is a point-in-time snapshot of one execution unit.
type UnitStats struct {
	// ID is the unit's stable identifier; it survives crash recreation.
	ID int `json:"id"`

	// Busy reports whether the unit currently holds an assigned task.
	Busy bool `json:"busy"`

	// Alive is false between a crash and the unit's recreation.
	Alive bool `json:"alive"`

	// TasksCompleted counts successful executions over the unit's lifetime,
	// including the lifetimes of its pre-crash incarnations.
	TasksCompleted uint64 `json:"tasks_completed"`

	// Failures counts handler errors, Crashes abnormal terminations.
	Failures uint64 `json:"failures"`
	Crashes  uint64 `json:"crashes"`

	// TotalProcessing is the summed wall-clock execution time, and
	// AvgProcessing that total divided by every task the unit ran.
	TotalProcessing time.Duration `json:"total_processing"`
	AvgProcessing   time.Duration `json:"avg_processing"`
}

// PoolStats is a consistent snapshot of the pool, taken by the coordinator
// goroutine so no counter can be mid-update.
type PoolStats struct {
	// QueueDepth is the total number of queued tasks; QueuedHigh and
	// QueuedNormal break it down by priority class.
	QueueDepth   int `json:"queue_depth"`
	QueuedHigh   int `json:"queued_high"`
	QueuedNormal int `json:"queued_normal"`

	// Waiting counts submissions parked by the block overflow policy.
	Waiting int `json:"waiting"`

	// InFlight counts tasks currently assigned to execution units.
	InFlight int `json:"in_flight"`

	// Lifetime counters. Failed counts handler errors, Crashes unit
	// crashes, Rejected tasks refused at shutdown.
	Submitted uint64 `json:"submitted"`
	Completed uint64 `json:"completed"`
	Failed    uint64 `json:"failed"`
	Crashes   uint64 `json:"crashes"`
	Rejected  uint64 `json:"rejected"`

	// SubmittedByType and SubmittedByPriority count admissions per task
	// type tag and per priority class.
	SubmittedByType     map[string]uint64   `json:"submitted_by_type"`
	SubmittedByPriority map[Priority]uint64 `json:"submitted_by_priority"`

	// Units holds one entry per pool slot, indexed by unit ID.
	Units []UnitStats `json:"units"`
}
