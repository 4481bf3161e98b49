package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/quillback/loglearn/internal/domain"
)

// RunStore defines the interface for run history persistence.
type RunStore interface {
	// Create saves a new run to the store. It validates the run first and
	// returns ErrInvalidEntity wrapping the validation failure if the run
	// is malformed.
	Create(ctx context.Context, run *domain.Run) error

	// GetByID retrieves a run by its unique ID.
	// Returns ErrRunNotFound if the run does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)

	// Update saves changes to an existing run, typically on completion.
	// Returns ErrRunNotFound if the run does not exist.
	Update(ctx context.Context, run *domain.Run) error

	// List retrieves runs ordered by creation time, newest first. limit
	// bounds the page size and offset skips past earlier pages. An empty
	// result is a valid outcome, not an error.
	List(ctx context.Context, limit, offset int) ([]*domain.Run, error)

	// WithTx returns a RunStore that executes against the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) RunStore
}
