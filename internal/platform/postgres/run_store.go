package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/platform/logger"
	"github.com/quillback/loglearn/internal/store"
)

// defaultListLimit bounds List page sizes when the caller passes a
// non-positive limit.
const defaultListLimit = 20

// PostgresRunStore implements the store.RunStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRunStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRunStore creates a new PostgreSQL implementation of the RunStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresRunStore(db store.DBTX, logger *slog.Logger) *PostgresRunStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRunStore{
		db:     db,
		logger: logger.With(slog.String("component", "run_store")),
	}
}

// Ensure PostgresRunStore implements store.RunStore interface
var _ store.RunStore = (*PostgresRunStore)(nil)

// Create implements store.RunStore.Create
// It saves a new run to the database, handling domain validation.
// Returns store.ErrInvalidEntity wrapping the validation failure if the
// run data is invalid, and store.ErrDuplicate if the run ID already exists.
func (s *PostgresRunStore) Create(ctx context.Context, run *domain.Run) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate run data
	if err := run.Validate(); err != nil {
		log.Warn("run validation failed during create",
			slog.String("error", err.Error()),
			slog.String("run_id", run.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO runs (id, mode, status, total_processed, successful_batches,
			failed_batches, throughput, started_at, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		run.ID,
		run.Mode,
		run.Status,
		run.TotalProcessed,
		run.SuccessfulBatches,
		run.FailedBatches,
		run.Throughput,
		run.StartedAt,
		nullableTime(run.CompletedAt),
		run.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create run",
			slog.String("error", err.Error()),
			slog.String("run_id", run.ID.String()),
			slog.String("mode", string(run.Mode)))
		return MapError(err)
	}

	log.Info("run created successfully",
		slog.String("run_id", run.ID.String()),
		slog.String("mode", string(run.Mode)),
		slog.String("status", string(run.Status)))
	return nil
}

// GetByID implements store.RunStore.GetByID
// It retrieves a run by its unique ID.
// Returns store.ErrRunNotFound if the run does not exist.
func (s *PostgresRunStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving run by ID", slog.String("run_id", id.String()))

	query := `
		SELECT id, mode, status, total_processed, successful_batches,
			failed_batches, throughput, started_at, completed_at, created_at
		FROM runs
		WHERE id = $1
	`

	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("run not found", slog.String("run_id", id.String()))
			return nil, store.ErrRunNotFound
		}
		log.Error("failed to get run by ID",
			slog.String("error", err.Error()),
			slog.String("run_id", id.String()))
		return nil, err
	}

	log.Debug("run retrieved successfully",
		slog.String("run_id", id.String()),
		slog.String("status", string(run.Status)))
	return run, nil
}

// Update implements store.RunStore.Update
// It saves changes to an existing run, typically when the run completes
// or fails. Returns store.ErrRunNotFound if the run does not exist.
func (s *PostgresRunStore) Update(ctx context.Context, run *domain.Run) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate run data
	if err := run.Validate(); err != nil {
		log.Warn("run validation failed during update",
			slog.String("error", err.Error()),
			slog.String("run_id", run.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE runs
		SET status = $1, total_processed = $2, successful_batches = $3,
			failed_batches = $4, throughput = $5, completed_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		run.Status,
		run.TotalProcessed,
		run.SuccessfulBatches,
		run.FailedBatches,
		run.Throughput,
		nullableTime(run.CompletedAt),
		run.ID,
	)

	if err != nil {
		log.Error("failed to update run",
			slog.String("error", err.Error()),
			slog.String("run_id", run.ID.String()),
			slog.String("status", string(run.Status)))
		return MapError(err)
	}

	// Check if a row was actually updated
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("run_id", run.ID.String()))
		return err
	}

	// If no rows were affected, the run didn't exist
	if rowsAffected == 0 {
		log.Debug("run not found for update",
			slog.String("run_id", run.ID.String()))
		return store.ErrRunNotFound
	}

	log.Info("run updated successfully",
		slog.String("run_id", run.ID.String()),
		slog.String("status", string(run.Status)))
	return nil
}

// List implements store.RunStore.List
// It retrieves runs ordered by creation time, newest first.
// Returns an empty slice if no runs match the criteria.
func (s *PostgresRunStore) List(ctx context.Context, limit, offset int) ([]*domain.Run, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate limit and offset
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	log.Debug("listing runs",
		slog.Int("limit", limit),
		slog.Int("offset", offset))

	query := `
		SELECT id, mode, status, total_processed, successful_batches,
			failed_batches, throughput, started_at, completed_at, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		log.Error("failed to query runs",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			log.Error("failed to scan run row",
				slog.String("error", err.Error()))
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	// Return empty slice instead of nil if no runs found
	if runs == nil {
		runs = []*domain.Run{}
	}

	log.Debug("listed runs", slog.Int("count", len(runs)))
	return runs, nil
}

// WithTx implements store.RunStore.WithTx
// It returns a new RunStore instance bound to the given transaction.
// The transaction lifecycle is managed by the caller.
func (s *PostgresRunStore) WithTx(tx *sql.Tx) store.RunStore {
	return &PostgresRunStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun reads one run row in the SELECT column order used throughout
// this store.
func scanRun(row rowScanner) (*domain.Run, error) {
	var run domain.Run
	var mode, status string
	var completedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&mode,
		&status,
		&run.TotalProcessed,
		&run.SuccessfulBatches,
		&run.FailedBatches,
		&run.Throughput,
		&run.StartedAt,
		&completedAt,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Mode = domain.RunMode(mode)
	run.Status = domain.RunStatus(status)
	if completedAt.Valid {
		run.CompletedAt = completedAt.Time
	}

	return &run, nil
}

// nullableTime converts a zero time to a SQL NULL so runs still in
// progress persist without a completion timestamp.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
