package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/task"
)

// maxLineBytes bounds a single scanned line. Log lines beyond this are
// treated as a stream error rather than silently truncated.
const maxLineBytes = 1024 * 1024

// ExtractFunc turns a batch of raw lines into structured log entries.
// Implementations may drop lines they cannot parse; returning an error
// aborts the run.
type ExtractFunc func(lines []string) ([]domain.LogEntry, error)

// LinePayloadFunc builds the payload submitted for one task type over a
// batch of extracted entries. The returned payload must satisfy the type
// registered for taskType.
type LinePayloadFunc func(taskType string, entries []domain.LogEntry) (any, error)

// LineProgress describes how far a line-stream run has advanced. It is
// delivered to the observer after every flushed batch.
type LineProgress struct {
	// Lines is the count of non-blank lines consumed so far.
	Lines int
	// Batches is the count of batches flushed so far.
	Batches int
	// Elapsed is the time since the run started.
	Elapsed time.Duration
}

// LineProgressFunc observes line-stream progress. It is invoked
// synchronously on the run's goroutine.
type LineProgressFunc func(LineProgress)

// LineOptions configures a single ProcessLineStream run.
type LineOptions struct {
	// Source labels entries produced by the default extractor, for
	// example a file path. Defaults to "stream".
	Source string
	// BatchSize overrides the pipeline's default batch size when positive.
	BatchSize int
	// TaskTypes lists the analysis task types to run. One task per type
	// is submitted for every batch. Required.
	TaskTypes []string
	// Priority applies to every submitted task. Defaults to normal.
	Priority task.Priority
	// Extract converts each batch of raw lines into entries. Defaults to
	// parsing every line as a log entry labeled with Source.
	Extract ExtractFunc
	// BuildPayload constructs the typed payload for each task. Required.
	BuildPayload LinePayloadFunc
	// OnProgress, if set, is invoked after every flushed batch.
	OnProgress LineProgressFunc
}

// ProcessLineStream consumes reader line by line, accumulating non-blank
// lines into batches and submitting one task per configured type for each
// batch. Blank lines are skipped and do not count toward batch size. The
// final partial batch is flushed during drain. Handler failures are folded
// into the summary; only dispatch failures (unreadable stream, extraction
// or payload errors, context cancellation) abort the run with an error.
func (p *Pipeline) ProcessLineStream(ctx context.Context, reader io.Reader, opts LineOptions) (*RunSummary, error) {
	if reader == nil {
		return nil, errors.New("reader cannot be nil")
	}
	if err := p.prepareLineOptions(&opts); err != nil {
		return nil, err
	}

	r := newRun(domain.RunModeLines, p.logger)
	r.transition(stateRunning)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	batch := make([]string, 0, opts.BatchSize)
	lines := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		items, err := p.submitLineBatch(ctx, r, batch, opts)
		if err != nil {
			return err
		}
		batch = batch[:0]
		if opts.OnProgress != nil {
			opts.OnProgress(LineProgress{
				Lines:   lines,
				Batches: r.batchCount(),
				Elapsed: time.Since(r.startTime),
			})
		}
		p.logger.Debug("line batch settled",
			"batch", r.batchCount(),
			"items", items,
			"lines", lines)
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines++
		batch = append(batch, line)
		if len(batch) >= opts.BatchSize {
			if err := flush(); err != nil {
				r.transition(stateFailed)
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		r.transition(stateFailed)
		return nil, fmt.Errorf("reading line stream: %w", err)
	}

	r.transition(stateDraining)
	if err := flush(); err != nil {
		r.transition(stateFailed)
		return nil, err
	}
	r.transition(stateCompleted)

	summary := r.summarize()
	p.logger.Info("line stream run completed",
		"lines", lines,
		"batches", r.batchCount(),
		"total_processed", summary.TotalProcessed,
		"success_rate", summary.SuccessRate,
		"throughput", summary.Throughput)
	return summary, nil
}

// submitLineBatch extracts entries from the accumulated lines, builds one
// spec per task type, and waits for the whole group to settle. It returns
// the number of extracted items the batch covered.
func (p *Pipeline) submitLineBatch(ctx context.Context, r *run, batch []string, opts LineOptions) (int, error) {
	entries, err := opts.Extract(batch)
	if err != nil {
		return 0, fmt.Errorf("extracting entries from batch %d: %w", r.batchCount()+1, err)
	}

	specs := make([]task.Spec, 0, len(opts.TaskTypes))
	for _, taskType := range opts.TaskTypes {
		payload, err := opts.BuildPayload(taskType, entries)
		if err != nil {
			return 0, fmt.Errorf("building %s payload for batch %d: %w: %v", taskType, r.batchCount()+1, task.ErrInvalidPayload, err)
		}
		specs = append(specs, task.Spec{
			Type:     taskType,
			Payload:  payload,
			Priority: opts.Priority,
		})
	}

	result, err := p.pool.SubmitBatch(ctx, specs)
	if err != nil {
		return 0, fmt.Errorf("submitting batch %d: %w", r.batchCount()+1, err)
	}
	r.recordBatch(len(entries), result)
	return len(entries), nil
}

// prepareLineOptions validates opts and fills defaults in place.
func (p *Pipeline) prepareLineOptions(opts *LineOptions) error {
	if len(opts.TaskTypes) == 0 {
		return errors.New("at least one task type is required")
	}
	if opts.BuildPayload == nil {
		return errors.New("payload builder cannot be nil")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = p.config.BatchSize
	}
	if opts.Source == "" {
		opts.Source = "stream"
	}
	if opts.Priority == "" {
		opts.Priority = task.PriorityNormal
	}
	if opts.Extract == nil {
		opts.Extract = defaultExtract(opts.Source)
	}
	return nil
}

// defaultExtract parses every line as a log entry attributed to source.
func defaultExtract(source string) ExtractFunc {
	return func(lines []string) ([]domain.LogEntry, error) {
		entries := make([]domain.LogEntry, 0, len(lines))
		for _, line := range lines {
			entry, err := domain.NewLogEntry(source, line)
			if err != nil {
				return nil, fmt.Errorf("parsing line: %w", err)
			}
			entries = append(entries, entry)
		}
		return entries, nil
	}
}
