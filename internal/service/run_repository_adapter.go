package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/store"
)

// NewRunRepositoryAdapter creates a new adapter that allows a store.RunStore
// to be used where a RunRepository is expected.
func NewRunRepositoryAdapter(runStore store.RunStore, db *sql.DB) RunRepository {
	return &runRepositoryAdapter{
		runStore: runStore,
		db:       db,
	}
}

// runRepositoryAdapter adapts a store.RunStore to the RunRepository interface
type runRepositoryAdapter struct {
	runStore store.RunStore
	db       *sql.DB
}

// Create implements RunRepository.Create
func (a *runRepositoryAdapter) Create(ctx context.Context, run *domain.Run) error {
	return a.runStore.Create(ctx, run)
}

// GetByID implements RunRepository.GetByID
func (a *runRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	return a.runStore.GetByID(ctx, id)
}

// Update implements RunRepository.Update
func (a *runRepositoryAdapter) Update(ctx context.Context, run *domain.Run) error {
	return a.runStore.Update(ctx, run)
}

// List implements RunRepository.List
func (a *runRepositoryAdapter) List(ctx context.Context, limit, offset int) ([]*domain.Run, error) {
	return a.runStore.List(ctx, limit, offset)
}

// WithTx implements RunRepository.WithTx
func (a *runRepositoryAdapter) WithTx(tx *sql.Tx) RunRepository {
	return &runRepositoryAdapter{
		runStore: a.runStore.WithTx(tx),
		db:       a.db,
	}
}

// DB implements RunRepository.DB
func (a *runRepositoryAdapter) DB() *sql.DB {
	return a.db
}
