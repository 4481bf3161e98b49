package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/quillback/loglearn/internal/task"
)

// Recorder implements the task.MetricsRecorder interface on OpenTelemetry
// instruments. All methods are called from the pool's coordinator
// goroutine; the otel instruments are safe for concurrent use regardless.
type Recorder struct {
	tasksSubmitted metric.Int64Counter
	tasksCompleted metric.Int64Counter
	taskDuration   metric.Float64Histogram
	unitCrashes    metric.Int64Counter
	queueDepth     metric.Int64Gauge
}

// Ensure Recorder implements task.MetricsRecorder interface
var _ task.MetricsRecorder = (*Recorder)(nil)

// NewRecorder creates the pool instruments on the given meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	tasksSubmitted, err := meter.Int64Counter("loglearn.pool.tasks_submitted",
		metric.WithDescription("Number of tasks admitted to the pool queue"),
		metric.WithUnit("{task}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks_submitted counter: %w", err)
	}

	tasksCompleted, err := meter.Int64Counter("loglearn.pool.tasks_completed",
		metric.WithDescription("Number of tasks settled with an outcome"),
		metric.WithUnit("{task}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks_completed counter: %w", err)
	}

	taskDuration, err := meter.Float64Histogram("loglearn.pool.task_duration",
		metric.WithDescription("Handler execution time per task"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create task_duration histogram: %w", err)
	}

	unitCrashes, err := meter.Int64Counter("loglearn.pool.unit_crashes",
		metric.WithDescription("Number of abnormal execution unit terminations"),
		metric.WithUnit("{crash}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create unit_crashes counter: %w", err)
	}

	queueDepth, err := meter.Int64Gauge("loglearn.pool.queue_depth",
		metric.WithDescription("Tasks waiting in the pool queue"),
		metric.WithUnit("{task}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create queue_depth gauge: %w", err)
	}

	return &Recorder{
		tasksSubmitted: tasksSubmitted,
		tasksCompleted: tasksCompleted,
		taskDuration:   taskDuration,
		unitCrashes:    unitCrashes,
		queueDepth:     queueDepth,
	}, nil
}

// TaskSubmitted implements task.MetricsRecorder.
func (r *Recorder) TaskSubmitted(taskType string, priority task.Priority) {
	r.tasksSubmitted.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("priority", string(priority)),
	))
}

// TaskCompleted implements task.MetricsRecorder.
func (r *Recorder) TaskCompleted(taskType string, duration time.Duration, success bool) {
	attrs := metric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.Bool("success", success),
	)
	r.tasksCompleted.Add(context.Background(), 1, attrs)
	r.taskDuration.Record(context.Background(), duration.Seconds(), attrs)
}

// UnitCrashed implements task.MetricsRecorder.
func (r *Recorder) UnitCrashed(unitID int) {
	r.unitCrashes.Add(context.Background(), 1, metric.WithAttributes(
		attribute.Int("unit_id", unitID),
	))
}

// QueueDepth implements task.MetricsRecorder.
func (r *Recorder) QueueDepth(depth int) {
	r.queueDepth.Record(context.Background(), int64(depth))
}
