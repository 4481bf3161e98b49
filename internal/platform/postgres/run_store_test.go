package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/store"
)

// mockDBTX is a configurable store.DBTX for exercising store logic
// without a live database. Query paths that need real rows are covered
// by integration tests against a provisioned database.
type mockDBTX struct {
	execResult sql.Result
	execErr    error

	execCalls int
	lastQuery string
	lastArgs  []any
}

func (m *mockDBTX) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	m.execCalls++
	m.lastQuery = query
	m.lastArgs = args
	return m.execResult, m.execErr
}

func (m *mockDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return nil, nil
}

func (m *mockDBTX) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, sql.ErrNoRows
}

func (m *mockDBTX) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}

// mockResult implements sql.Result for testing
type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (m mockResult) RowsAffected() (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.rowsAffected, nil
}

func validRun(t *testing.T) *domain.Run {
	t.Helper()
	run, err := domain.NewRun(domain.RunModeLines)
	require.NoError(t, err)
	return run
}

func TestNewPostgresRunStore(t *testing.T) {
	t.Parallel()

	t.Run("panics on nil db", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			NewPostgresRunStore(nil, nil)
		})
	})

	t.Run("uses default logger when nil", func(t *testing.T) {
		t.Parallel()
		s := NewPostgresRunStore(&mockDBTX{}, nil)
		require.NotNil(t, s)
		assert.NotNil(t, s.logger)
	})
}

func TestPostgresRunStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("rejects invalid run before touching the database", func(t *testing.T) {
		t.Parallel()
		db := &mockDBTX{execResult: mockResult{rowsAffected: 1}}
		s := NewPostgresRunStore(db, nil)

		run := validRun(t)
		run.Mode = domain.RunMode("teleport")

		err := s.Create(context.Background(), run)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.Zero(t, db.execCalls, "invalid run must not reach the database")
	})

	t.Run("inserts valid run", func(t *testing.T) {
		t.Parallel()
		db := &mockDBTX{execResult: mockResult{rowsAffected: 1}}
		s := NewPostgresRunStore(db, nil)

		run := validRun(t)
		err := s.Create(context.Background(), run)
		require.NoError(t, err)
		assert.Equal(t, 1, db.execCalls)
		assert.Contains(t, db.lastQuery, "INSERT INTO runs")
	})

	t.Run("running run persists null completion time", func(t *testing.T) {
		t.Parallel()
		db := &mockDBTX{execResult: mockResult{rowsAffected: 1}}
		s := NewPostgresRunStore(db, nil)

		run := validRun(t)
		require.NoError(t, s.Create(context.Background(), run))

		// completed_at is the ninth bound parameter
		require.Len(t, db.lastArgs, 10)
		assert.Nil(t, db.lastArgs[8])
	})

	t.Run("maps unique violation to ErrDuplicate", func(t *testing.T) {
		t.Parallel()
		db := &mockDBTX{execErr: &pgconn.PgError{Code: uniqueViolationCode}}
		s := NewPostgresRunStore(db, nil)

		err := s.Create(context.Background(), validRun(t))
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})
}

func TestPostgresRunStore_Update(t *testing.T) {
	t.Parallel()

	t.Run("updates completed run", func(t *testing.T) {
		t.Parallel()
		db := &mockDBTX{execResult: mockResult{rowsAffected: 1}}
		s := NewPostgresRunStore(db, nil)

		run := validRun(t)
		run.Complete(100, 4, 0, 25.0)

		err := s.Update(context.Background(), run)
		require.NoError(t, err)
		assert.Contains(t, db.lastQuery, "UPDATE runs")

		// completed_at is the sixth bound parameter and must be set now
		require.Len(t, db.lastArgs, 7)
		completedAt, ok := db.lastArgs[5].(time.Time)
		require.True(t, ok, "completed run must bind a concrete completion time")
		assert.False(t, completedAt.IsZero())
	})

	t.Run("returns ErrRunNotFound when no rows affected", func(t *testing.T) {
		t.Parallel()
		db := &mockDBTX{execResult: mockResult{rowsAffected: 0}}
		s := NewPostgresRunStore(db, nil)

		run := validRun(t)
		run.Fail()

		err := s.Update(context.Background(), run)
		assert.ErrorIs(t, err, store.ErrRunNotFound)
	})

	t.Run("rejects invalid run", func(t *testing.T) {
		t.Parallel()
		db := &mockDBTX{execResult: mockResult{rowsAffected: 1}}
		s := NewPostgresRunStore(db, nil)

		run := validRun(t)
		run.ID = uuid.Nil

		err := s.Update(context.Background(), run)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.Zero(t, db.execCalls)
	})
}

func TestPostgresRunStore_WithTx(t *testing.T) {
	t.Parallel()

	original := NewPostgresRunStore(&mockDBTX{}, nil)
	tx := &sql.Tx{}

	bound := original.WithTx(tx)
	require.NotNil(t, bound)

	// The returned store must be a distinct instance bound to the
	// transaction, leaving the original untouched.
	boundStore, ok := bound.(*PostgresRunStore)
	require.True(t, ok)
	assert.Same(t, tx, boundStore.db.(*sql.Tx))
	assert.NotSame(t, original, boundStore)
	_, isMock := original.db.(*mockDBTX)
	assert.True(t, isMock, "original store must keep its own connection")
}
