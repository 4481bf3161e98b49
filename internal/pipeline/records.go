package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/task"
)

// RecordPayloadFunc builds the payload submitted for one task type over a
// single conversation turn.
type RecordPayloadFunc func(taskType string, turn domain.ConversationTurn) (any, error)

// RecordProgress describes how far a record run has advanced. It is
// delivered to the observer after every settled record.
type RecordProgress struct {
	// Records is the count of records fully settled so far.
	Records int
	// Total is the number of records in the run.
	Total int
	// Elapsed is the time since the run started.
	Elapsed time.Duration
}

// RecordProgressFunc observes record-run progress. It is invoked
// synchronously on the run's goroutine.
type RecordProgressFunc func(RecordProgress)

// RecordOptions configures a single ProcessRecords run.
type RecordOptions struct {
	// TaskTypes lists the analysis task types to run. One task per type
	// is submitted for every record. Required.
	TaskTypes []string
	// Priority applies to every submitted task. Defaults to normal.
	Priority task.Priority
	// BuildPayload constructs the typed payload for each task. Required.
	BuildPayload RecordPayloadFunc
	// OnProgress, if set, is invoked after every settled record.
	OnProgress RecordProgressFunc
}

// ProcessRecords submits one task group per record and waits for each group
// to settle before moving to the next. Each record therefore forms its own
// batch in the summary. Handler failures are folded into the summary; only
// dispatch failures abort the run with an error.
func (p *Pipeline) ProcessRecords(ctx context.Context, turns []domain.ConversationTurn, opts RecordOptions) (*RunSummary, error) {
	if len(opts.TaskTypes) == 0 {
		return nil, errors.New("at least one task type is required")
	}
	if opts.BuildPayload == nil {
		return nil, errors.New("payload builder cannot be nil")
	}
	if opts.Priority == "" {
		opts.Priority = task.PriorityNormal
	}

	r := newRun(domain.RunModeRecords, p.logger)
	r.transition(stateRunning)

	for i := range turns {
		specs := make([]task.Spec, 0, len(opts.TaskTypes))
		for _, taskType := range opts.TaskTypes {
			payload, err := opts.BuildPayload(taskType, turns[i])
			if err != nil {
				r.transition(stateFailed)
				return nil, fmt.Errorf("building %s payload for record %d: %w: %v", taskType, i+1, task.ErrInvalidPayload, err)
			}
			specs = append(specs, task.Spec{
				Type:     taskType,
				Payload:  payload,
				Priority: opts.Priority,
			})
		}

		result, err := p.pool.SubmitBatch(ctx, specs)
		if err != nil {
			r.transition(stateFailed)
			return nil, fmt.Errorf("submitting record %d: %w", i+1, err)
		}
		r.recordBatch(1, result)

		if opts.OnProgress != nil {
			opts.OnProgress(RecordProgress{
				Records: i + 1,
				Total:   len(turns),
				Elapsed: time.Since(r.startTime),
			})
		}
	}

	r.transition(stateDraining)
	r.transition(stateCompleted)

	summary := r.summarize()
	p.logger.Info("record run completed",
		"records", len(turns),
		"total_processed", summary.TotalProcessed,
		"success_rate", summary.SuccessRate,
		"throughput", summary.Throughput)
	return summary, nil
}
