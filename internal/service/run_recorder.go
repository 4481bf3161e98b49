package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/events"
	"github.com/quillback/loglearn/internal/pipeline"
	"github.com/quillback/loglearn/internal/store"
)

// RunRecorder subscribes to run completion events and persists the final
// state of each run, keeping the processing path free of any direct
// storage dependency.
type RunRecorder struct {
	runRepo RunRepository
	logger  *slog.Logger
}

// Ensure RunRecorder implements events.EventHandler
var _ events.EventHandler = (*RunRecorder)(nil)

// NewRunRecorder creates a RunRecorder backed by the given repository.
func NewRunRecorder(runRepo RunRepository, logger *slog.Logger) (*RunRecorder, error) {
	if runRepo == nil {
		return nil, &AnalysisServiceError{
			Operation: "create_run_recorder",
			Message:   "runRepo cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &RunRecorder{
		runRepo: runRepo,
		logger:  logger.With("component", "run_recorder"),
	}, nil
}

// HandleEvent persists the terminal state announced by the event. The
// run row created at run start is loaded and updated in one transaction;
// if that row is missing (the start write failed), a terminal row is
// created instead so the history is not silently lost.
func (r *RunRecorder) HandleEvent(ctx context.Context, event *events.RunCompletedEvent) error {
	var summary *pipeline.RunSummary
	if !event.Failed {
		var decoded pipeline.RunSummary
		if err := event.UnmarshalSummary(&decoded); err != nil {
			r.logger.Error("failed to decode run summary",
				"error", err,
				"run_id", event.RunID,
				"event_id", event.ID)
			return NewAnalysisServiceError("record_run", "failed to decode run summary", err)
		}
		summary = &decoded
	}

	err := withRunRepo(ctx, r.runRepo, func(ctx context.Context, repo RunRepository) error {
		run, err := repo.GetByID(ctx, event.RunID)
		if err != nil {
			if errors.Is(err, store.ErrRunNotFound) {
				return repo.Create(ctx, r.reconstructRun(event, summary))
			}
			return err
		}

		applyOutcome(run, event, summary)
		return repo.Update(ctx, run)
	})
	if err != nil {
		r.logger.Error("failed to record run outcome",
			"error", err,
			"run_id", event.RunID,
			"event_id", event.ID)
		return NewAnalysisServiceError("record_run", "failed to record run outcome", err)
	}

	r.logger.Debug("run outcome recorded",
		"run_id", event.RunID,
		"failed", event.Failed)
	return nil
}

// applyOutcome moves the loaded run to its terminal state.
func applyOutcome(run *domain.Run, event *events.RunCompletedEvent, summary *pipeline.RunSummary) {
	if event.Failed || summary == nil {
		run.Fail()
		return
	}
	run.Complete(
		summary.TotalProcessed,
		summary.SuccessfulBatches,
		summary.FailedBatches,
		summary.Throughput,
	)
}

// reconstructRun builds a terminal run row from the event alone, for the
// case where no row was written at run start.
func (r *RunRecorder) reconstructRun(
	event *events.RunCompletedEvent,
	summary *pipeline.RunSummary,
) *domain.Run {
	run := &domain.Run{
		ID:        event.RunID,
		Mode:      domain.RunMode(event.Mode),
		Status:    domain.RunStatusRunning,
		StartedAt: event.CreatedAt,
		CreatedAt: event.CreatedAt,
	}
	if summary != nil {
		run.StartedAt = summary.StartTime
	}

	applyOutcome(run, event, summary)

	r.logger.Warn("run row missing at completion, recreating",
		"run_id", event.RunID,
		"mode", event.Mode)
	return run
}
