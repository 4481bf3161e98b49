package pipeline

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/task"
)

// runState tracks where a run is in its lifecycle.
type runState string

const (
	stateIdle      runState = "idle"
	stateRunning   runState = "running"
	stateDraining  runState = "draining"
	stateCompleted runState = "completed"
	stateFailed    runState = "failed"
)

// RunSummary reports the aggregate outcome of a completed pipeline run.
type RunSummary struct {
	// Mode identifies which processing mode produced this summary.
	Mode domain.RunMode `json:"mode"`
	// TotalProcessed counts the input items the run handled: extracted
	// entries for line runs, records for record runs, specs for bulk runs.
	TotalProcessed int `json:"total_processed"`
	// SuccessfulBatches counts batches in which every task succeeded.
	SuccessfulBatches int `json:"successful_batches"`
	// FailedBatches counts batches with at least one failed task.
	FailedBatches int `json:"failed_batches"`
	// SuccessfulTasks and FailedTasks count individual task outcomes
	// across all batches.
	SuccessfulTasks int `json:"successful_tasks"`
	FailedTasks     int `json:"failed_tasks"`
	// StartTime and EndTime bound the run in UTC.
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	// Elapsed is EndTime minus StartTime.
	Elapsed time.Duration `json:"elapsed"`
	// Throughput is TotalProcessed divided by elapsed seconds.
	Throughput float64 `json:"throughput"`
	// SuccessRate is SuccessfulBatches over total batches, in [0, 1].
	// Zero when the run produced no batches.
	SuccessRate float64 `json:"success_rate"`
	// AvgProcessing is the mean handler duration across successful tasks.
	AvgProcessing time.Duration `json:"avg_processing"`
	// PerType counts successful results by task type.
	PerType map[string]int `json:"per_type"`
}

// run accumulates statistics for a single pipeline run. It is owned by the
// goroutine driving the run and never shared.
type run struct {
	mode      domain.RunMode
	state     runState
	startTime time.Time
	logger    *slog.Logger

	totalProcessed    int
	successfulBatches int
	failedBatches     int
	successfulTasks   int
	failedTasks       int
	totalDuration     time.Duration
	perType           map[string]int
}

func newRun(mode domain.RunMode, logger *slog.Logger) *run {
	return &run{
		mode:      mode,
		state:     stateIdle,
		startTime: time.Now().UTC(),
		logger:    logger.With("mode", string(mode)),
		perType:   make(map[string]int),
	}
}

// transition moves the run to a new state.
func (r *run) transition(to runState) {
	r.logger.Debug("run state transition",
		"from", string(r.state),
		"to", string(to))
	r.state = to
}

// recordBatch folds one settled batch into the run totals. items is the
// number of input items the batch covered, which differs from the task
// count when a batch fans out into multiple task types.
func (r *run) recordBatch(items int, batch *task.BatchResult) {
	r.totalProcessed += items
	if batch.Failed == 0 {
		r.successfulBatches++
	} else {
		r.failedBatches++
	}
	r.successfulTasks += batch.Successful
	r.failedTasks += batch.Failed

	for i := range batch.Results {
		result := &batch.Results[i]
		if result.TaskID == uuid.Nil {
			continue
		}
		r.perType[result.Type]++
		r.totalDuration += result.Duration
	}
}

func (r *run) batchCount() int {
	return r.successfulBatches + r.failedBatches
}

// summarize closes out the run and produces its summary.
func (r *run) summarize() *RunSummary {
	end := time.Now().UTC()
	elapsed := end.Sub(r.startTime)

	summary := &RunSummary{
		Mode:              r.mode,
		TotalProcessed:    r.totalProcessed,
		SuccessfulBatches: r.successfulBatches,
		FailedBatches:     r.failedBatches,
		SuccessfulTasks:   r.successfulTasks,
		FailedTasks:       r.failedTasks,
		StartTime:         r.startTime,
		EndTime:           end,
		Elapsed:           elapsed,
		PerType:           make(map[string]int, len(r.perType)),
	}
	for taskType, count := range r.perType {
		summary.PerType[taskType] = count
	}

	if secs := elapsed.Seconds(); secs > 0 {
		summary.Throughput = float64(r.totalProcessed) / secs
	}
	if total := r.batchCount(); total > 0 {
		summary.SuccessRate = float64(r.successfulBatches) / float64(total)
	}
	if r.successfulTasks > 0 {
		summary.AvgProcessing = r.totalDuration / time.Duration(r.successfulTasks)
	}

	return summary
}
