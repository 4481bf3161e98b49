package service

import (
	"context"
	"database/sql"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/events"
	"github.com/quillback/loglearn/internal/pipeline"
	"github.com/quillback/loglearn/internal/task"
)

// MockRunRepository mocks the RunRepository interface
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Create(ctx context.Context, run *domain.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func (m *MockRunRepository) Update(ctx context.Context, run *domain.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) List(ctx context.Context, limit, offset int) ([]*domain.Run, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Run), args.Error(1)
}

func (m *MockRunRepository) WithTx(tx *sql.Tx) RunRepository {
	args := m.Called(tx)
	return args.Get(0).(RunRepository)
}

func (m *MockRunRepository) DB() *sql.DB {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*sql.DB)
}

// MockTaskRunner mocks the TaskRunner interface
type MockTaskRunner struct {
	mock.Mock
}

func (m *MockTaskRunner) Submit(ctx context.Context, spec task.Spec) (task.Result, error) {
	args := m.Called(ctx, spec)
	result, _ := args.Get(0).(task.Result)
	return result, args.Error(1)
}

func (m *MockTaskRunner) SubmitBatch(ctx context.Context, specs []task.Spec) (*task.BatchResult, error) {
	args := m.Called(ctx, specs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.BatchResult), args.Error(1)
}

func (m *MockTaskRunner) Stats() task.PoolStats {
	args := m.Called()
	stats, _ := args.Get(0).(task.PoolStats)
	return stats
}

// MockPipelineDriver mocks the PipelineDriver interface
type MockPipelineDriver struct {
	mock.Mock
}

func (m *MockPipelineDriver) ProcessLineStream(
	ctx context.Context,
	reader io.Reader,
	opts pipeline.LineOptions,
) (*pipeline.RunSummary, error) {
	args := m.Called(ctx, reader, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.RunSummary), args.Error(1)
}

func (m *MockPipelineDriver) ProcessRecords(
	ctx context.Context,
	turns []domain.ConversationTurn,
	opts pipeline.RecordOptions,
) (*pipeline.RunSummary, error) {
	args := m.Called(ctx, turns, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.RunSummary), args.Error(1)
}

// MockEventEmitter mocks the events.EventEmitter interface
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.RunCompletedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
