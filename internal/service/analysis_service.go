package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/events"
	"github.com/quillback/loglearn/internal/pipeline"
	"github.com/quillback/loglearn/internal/store"
	"github.com/quillback/loglearn/internal/task"
)

// RunRepository defines the repository interface for the service layer.
// This is aligned with store.RunStore to ensure proper separation of concerns.
type RunRepository interface {
	// Create saves a new run to the store
	Create(ctx context.Context, run *domain.Run) error

	// GetByID retrieves a run by its unique ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)

	// Update saves changes to an existing run
	Update(ctx context.Context, run *domain.Run) error

	// List retrieves runs ordered by creation time, newest first
	List(ctx context.Context, limit, offset int) ([]*domain.Run, error)

	// WithTx returns a new repository instance that uses the provided transaction
	WithTx(tx *sql.Tx) RunRepository

	// DB returns the underlying database connection, nil when the
	// repository is not backed by a transactional database
	DB() *sql.DB
}

// TaskRunner defines the interface for submitting work to the pool
type TaskRunner interface {
	// Submit enqueues one task and waits for its outcome
	Submit(ctx context.Context, spec task.Spec) (task.Result, error)

	// SubmitBatch enqueues a group of tasks and waits for all outcomes
	SubmitBatch(ctx context.Context, specs []task.Spec) (*task.BatchResult, error)

	// Stats reports a snapshot of pool counters
	Stats() task.PoolStats
}

// PipelineDriver drives streaming runs against the pool
type PipelineDriver interface {
	// ProcessLineStream reads a line stream and processes it in batches
	ProcessLineStream(ctx context.Context, reader io.Reader, opts pipeline.LineOptions) (*pipeline.RunSummary, error)

	// ProcessRecords processes structured records one task group per record
	ProcessRecords(ctx context.Context, turns []domain.ConversationTurn, opts pipeline.RecordOptions) (*pipeline.RunSummary, error)
}

// RunReport pairs a pipeline summary with the recorded run identity.
type RunReport struct {
	RunID   uuid.UUID            `json:"run_id"`
	Summary *pipeline.RunSummary `json:"summary"`
}

// AnalysisService provides task and pipeline orchestration operations.
type AnalysisService interface {
	// RunTask submits a single task and waits for its result
	RunTask(ctx context.Context, spec task.Spec) (task.Result, error)

	// RunBatch submits a group of tasks and waits for the aggregate outcome
	RunBatch(ctx context.Context, specs []task.Spec) (*task.BatchResult, error)

	// RunLineStream drives a line-mode pipeline run over the reader,
	// recording the run and emitting a completion event
	RunLineStream(ctx context.Context, reader io.Reader, opts pipeline.LineOptions) (*RunReport, error)

	// RunRecords drives a record-mode pipeline run over the turns,
	// recording the run and emitting a completion event
	RunRecords(ctx context.Context, turns []domain.ConversationTurn, opts pipeline.RecordOptions) (*RunReport, error)

	// GetRun retrieves a recorded run by ID
	GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, error)

	// ListRuns retrieves recorded runs, newest first
	ListRuns(ctx context.Context, limit, offset int) ([]*domain.Run, error)

	// PoolStats reports a snapshot of pool counters
	PoolStats() task.PoolStats
}

// AnalysisServiceError wraps errors from the analysis service with context.
type AnalysisServiceError struct {
	// Operation is the operation that failed (e.g., "run_lines", "get_run")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for AnalysisServiceError.
func (e *AnalysisServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("analysis service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *AnalysisServiceError) Unwrap() error {
	return e.Err
}

// NewAnalysisServiceError creates a new AnalysisServiceError.
// It returns known sentinel errors directly without wrapping so callers
// can match them with errors.Is.
func NewAnalysisServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	// Check for service-defined sentinel errors
	if errors.Is(err, ErrRunNotFound) {
		return ErrRunNotFound
	}

	// Check for store-level sentinel errors that should be mapped to service-level ones
	if errors.Is(err, store.ErrRunNotFound) {
		return ErrRunNotFound
	}

	// Pool sentinels pass through so the API layer can map them to
	// status codes.
	for _, sentinel := range []error{
		task.ErrPoolShutdown,
		task.ErrQueueFull,
		task.ErrUnknownTaskType,
		task.ErrInvalidPayload,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	// If not a sentinel to be returned directly, wrap it
	return &AnalysisServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// analysisServiceImpl implements the AnalysisService interface
type analysisServiceImpl struct {
	runner       TaskRunner
	driver       PipelineDriver
	runRepo      RunRepository // nil disables run history
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewAnalysisService creates a new AnalysisService.
// runRepo may be nil, which disables run history; the other dependencies
// are required.
func NewAnalysisService(
	runner TaskRunner,
	driver PipelineDriver,
	runRepo RunRepository,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (AnalysisService, error) {
	// Validate dependencies
	if runner == nil {
		return nil, &AnalysisServiceError{
			Operation: "create_service",
			Message:   "runner cannot be nil",
		}
	}
	if driver == nil {
		return nil, &AnalysisServiceError{
			Operation: "create_service",
			Message:   "driver cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &AnalysisServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &analysisServiceImpl{
		runner:       runner,
		driver:       driver,
		runRepo:      runRepo,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "analysis_service"),
	}, nil
}

// RunTask submits a single task and waits for its result.
func (s *analysisServiceImpl) RunTask(ctx context.Context, spec task.Spec) (task.Result, error) {
	result, err := s.runner.Submit(ctx, spec)
	if err != nil {
		s.logger.Warn("task submission failed",
			"error", err,
			"task_type", spec.Type)
		return task.Result{}, NewAnalysisServiceError("run_task", "task execution failed", err)
	}

	s.logger.Debug("task completed",
		"task_id", result.TaskID,
		"task_type", result.Type,
		"duration", result.Duration)
	return result, nil
}

// RunBatch submits a group of tasks and waits for the aggregate outcome.
func (s *analysisServiceImpl) RunBatch(ctx context.Context, specs []task.Spec) (*task.BatchResult, error) {
	batch, err := s.runner.SubmitBatch(ctx, specs)
	if err != nil {
		s.logger.Warn("batch submission failed",
			"error", err,
			"batch_size", len(specs))
		return nil, NewAnalysisServiceError("run_batch", "batch execution failed", err)
	}

	s.logger.Debug("batch completed",
		"batch_size", len(specs),
		"successful", batch.Successful,
		"failed", batch.Failed)
	return batch, nil
}

// RunLineStream drives a line-mode pipeline run over the reader.
func (s *analysisServiceImpl) RunLineStream(
	ctx context.Context,
	reader io.Reader,
	opts pipeline.LineOptions,
) (*RunReport, error) {
	return s.drive(ctx, domain.RunModeLines, "run_lines", func(ctx context.Context) (*pipeline.RunSummary, error) {
		return s.driver.ProcessLineStream(ctx, reader, opts)
	})
}

// RunRecords drives a record-mode pipeline run over the turns.
func (s *analysisServiceImpl) RunRecords(
	ctx context.Context,
	turns []domain.ConversationTurn,
	opts pipeline.RecordOptions,
) (*RunReport, error) {
	return s.drive(ctx, domain.RunModeRecords, "run_records", func(ctx context.Context) (*pipeline.RunSummary, error) {
		return s.driver.ProcessRecords(ctx, turns, opts)
	})
}

// drive runs one pipeline invocation with run recording around it: a run
// row is created before processing starts, and a completion event is
// emitted afterward so the run recorder can persist the outcome. History
// recording is best-effort: a storage failure is logged and the run
// proceeds, since the processing itself is the product.
func (s *analysisServiceImpl) drive(
	ctx context.Context,
	mode domain.RunMode,
	operation string,
	process func(ctx context.Context) (*pipeline.RunSummary, error),
) (*RunReport, error) {
	run, err := domain.NewRun(mode)
	if err != nil {
		return nil, NewAnalysisServiceError(operation, "failed to create run", err)
	}

	s.persistRunStart(ctx, run)

	summary, processErr := process(ctx)
	if processErr != nil {
		s.logger.Warn("pipeline run failed",
			"error", processErr,
			"run_id", run.ID,
			"mode", mode)
		s.emitCompletion(ctx, run, nil, true)
		return nil, NewAnalysisServiceError(operation, "pipeline run failed", processErr)
	}

	s.logger.Info("pipeline run completed",
		"run_id", run.ID,
		"mode", mode,
		"total_processed", summary.TotalProcessed,
		"successful_batches", summary.SuccessfulBatches,
		"failed_batches", summary.FailedBatches,
		"throughput", summary.Throughput)

	s.emitCompletion(ctx, run, summary, false)

	return &RunReport{RunID: run.ID, Summary: summary}, nil
}

// persistRunStart records the run in its running state. A nil repository
// disables history; storage errors are logged and swallowed.
func (s *analysisServiceImpl) persistRunStart(ctx context.Context, run *domain.Run) {
	if s.runRepo == nil {
		return
	}

	err := withRunRepo(ctx, s.runRepo, func(ctx context.Context, repo RunRepository) error {
		return repo.Create(ctx, run)
	})
	if err != nil {
		s.logger.Warn("failed to record run start",
			"error", err,
			"run_id", run.ID)
	}
}

// emitCompletion publishes the run completion event. Emission failures are
// logged and swallowed for the same reason storage failures are.
func (s *analysisServiceImpl) emitCompletion(
	ctx context.Context,
	run *domain.Run,
	summary *pipeline.RunSummary,
	failed bool,
) {
	event, err := events.NewRunCompletedEvent(run.ID, string(run.Mode), failed, summary)
	if err != nil {
		s.logger.Warn("failed to create run completion event",
			"error", err,
			"run_id", run.ID)
		return
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("failed to emit run completion event",
			"error", err,
			"run_id", run.ID,
			"event_id", event.ID)
		return
	}

	s.logger.Debug("run completion event emitted",
		"run_id", run.ID,
		"event_id", event.ID,
		"failed", failed)
}

// GetRun retrieves a recorded run by ID.
// Returns ErrHistoryDisabled when no run repository is configured.
func (s *analysisServiceImpl) GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	if s.runRepo == nil {
		return nil, ErrHistoryDisabled
	}

	run, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return nil, ErrRunNotFound
		}
		s.logger.Error("failed to retrieve run",
			"error", err,
			"run_id", id)
		return nil, NewAnalysisServiceError("get_run", "failed to retrieve run", err)
	}

	return run, nil
}

// ListRuns retrieves recorded runs, newest first.
// Returns ErrHistoryDisabled when no run repository is configured.
func (s *analysisServiceImpl) ListRuns(ctx context.Context, limit, offset int) ([]*domain.Run, error) {
	if s.runRepo == nil {
		return nil, ErrHistoryDisabled
	}

	runs, err := s.runRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list runs",
			"error", err,
			"limit", limit,
			"offset", offset)
		return nil, NewAnalysisServiceError("list_runs", "failed to list runs", err)
	}

	return runs, nil
}

// PoolStats reports a snapshot of pool counters.
func (s *analysisServiceImpl) PoolStats() task.PoolStats {
	return s.runner.Stats()
}

// withRunRepo executes fn against the repository, inside a transaction
// when the repository exposes its database handle.
func withRunRepo(
	ctx context.Context,
	repo RunRepository,
	fn func(ctx context.Context, repo RunRepository) error,
) error {
	if db := repo.DB(); db != nil {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return fn(ctx, repo.WithTx(tx))
		})
	}
	return fn(ctx, repo)
}
