package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/task"
)

// BulkOptions configures a single ProcessBulk run.
type BulkOptions struct {
	// SliceSize is the number of specs per streaming-batch submission.
	// Defaults to the pipeline's batch size when zero or negative.
	SliceSize int
	// OnProgress, if set, receives chunk-level progress rescaled to the
	// whole run: Completed and Total count specs across all slices.
	OnProgress task.ProgressFunc
}

// ProcessBulk splits specs into fixed-size slices up front and submits each
// slice as a streaming batch, so progress arrives chunk by chunk as the
// pool works through the collection. Handler failures are folded into the
// summary; only dispatch failures abort the run with an error.
func (p *Pipeline) ProcessBulk(ctx context.Context, specs []task.Spec, opts BulkOptions) (*RunSummary, error) {
	if len(specs) == 0 {
		return nil, errors.New("at least one task spec is required")
	}
	if opts.SliceSize <= 0 {
		opts.SliceSize = p.config.BatchSize
	}

	r := newRun(domain.RunModeBulk, p.logger)
	r.transition(stateRunning)

	settledBefore := 0
	chunksBefore := 0
	for start := 0; start < len(specs); start += opts.SliceSize {
		end := min(start+opts.SliceSize, len(specs))
		slice := specs[start:end]

		var onProgress task.ProgressFunc
		if opts.OnProgress != nil {
			settledBase := settledBefore
			chunkBase := chunksBefore
			onProgress = func(progress task.Progress) {
				progress.Completed += settledBase
				progress.Total = len(specs)
				progress.Fraction = float64(progress.Completed) / float64(len(specs))
				progress.Batch += chunkBase
				opts.OnProgress(progress)
			}
		}

		results, errs, err := p.pool.SubmitStreamingBatch(ctx, slice, onProgress)
		if err != nil {
			r.transition(stateFailed)
			return nil, fmt.Errorf("submitting bulk slice at offset %d: %w", start, err)
		}
		r.recordBatch(len(slice), foldStreamingResults(results, errs))
		settledBefore += len(slice)
		chunksBefore += (len(slice) + p.pool.Size() - 1) / p.pool.Size()
	}

	r.transition(stateDraining)
	r.transition(stateCompleted)

	summary := r.summarize()
	p.logger.Info("bulk run completed",
		"specs", len(specs),
		"slices", r.batchCount(),
		"total_processed", summary.TotalProcessed,
		"success_rate", summary.SuccessRate,
		"throughput", summary.Throughput)
	return summary, nil
}

// foldStreamingResults repackages streaming-batch output in BatchResult
// form so run accounting treats both submission paths uniformly.
func foldStreamingResults(results []task.Result, errs []error) *task.BatchResult {
	batch := &task.BatchResult{
		Results: results,
		Errors:  errs,
	}
	for _, err := range errs {
		if err != nil {
			batch.Failed++
		} else {
			batch.Successful++
		}
	}
	return batch
}
