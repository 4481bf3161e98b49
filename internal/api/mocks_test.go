package api

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quillback/loglearn/internal/analysis"
	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/pipeline"
	"github.com/quillback/loglearn/internal/service"
	"github.com/quillback/loglearn/internal/task"
)

// mockAnalysisService is a mock implementation of the AnalysisService
// interface. Unset function fields fall back to zero-value returns.
type mockAnalysisService struct {
	runTaskFn       func(ctx context.Context, spec task.Spec) (task.Result, error)
	runBatchFn      func(ctx context.Context, specs []task.Spec) (*task.BatchResult, error)
	runLineStreamFn func(ctx context.Context, reader io.Reader, opts pipeline.LineOptions) (*service.RunReport, error)
	runRecordsFn    func(ctx context.Context, turns []domain.ConversationTurn, opts pipeline.RecordOptions) (*service.RunReport, error)
	getRunFn        func(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	listRunsFn      func(ctx context.Context, limit, offset int) ([]*domain.Run, error)
	poolStatsFn     func() task.PoolStats
}

func (m *mockAnalysisService) RunTask(ctx context.Context, spec task.Spec) (task.Result, error) {
	if m.runTaskFn != nil {
		return m.runTaskFn(ctx, spec)
	}
	return task.Result{}, nil
}

func (m *mockAnalysisService) RunBatch(ctx context.Context, specs []task.Spec) (*task.BatchResult, error) {
	if m.runBatchFn != nil {
		return m.runBatchFn(ctx, specs)
	}
	return &task.BatchResult{}, nil
}

func (m *mockAnalysisService) RunLineStream(
	ctx context.Context,
	reader io.Reader,
	opts pipeline.LineOptions,
) (*service.RunReport, error) {
	if m.runLineStreamFn != nil {
		return m.runLineStreamFn(ctx, reader, opts)
	}
	return &service.RunReport{RunID: uuid.New(), Summary: &pipeline.RunSummary{}}, nil
}

func (m *mockAnalysisService) RunRecords(
	ctx context.Context,
	turns []domain.ConversationTurn,
	opts pipeline.RecordOptions,
) (*service.RunReport, error) {
	if m.runRecordsFn != nil {
		return m.runRecordsFn(ctx, turns, opts)
	}
	return &service.RunReport{RunID: uuid.New(), Summary: &pipeline.RunSummary{}}, nil
}

func (m *mockAnalysisService) GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	if m.getRunFn != nil {
		return m.getRunFn(ctx, id)
	}
	return nil, service.ErrRunNotFound
}

func (m *mockAnalysisService) ListRuns(ctx context.Context, limit, offset int) ([]*domain.Run, error) {
	if m.listRunsFn != nil {
		return m.listRunsFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockAnalysisService) PoolStats() task.PoolStats {
	if m.poolStatsFn != nil {
		return m.poolStatsFn()
	}
	return task.PoolStats{}
}

// testLogger returns a logger that discards all output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testRegistry builds a registry with all built-in handlers, so payload
// decoding in tests goes through the real type registrations.
func testRegistry(t *testing.T) *task.Registry {
	t.Helper()
	registry, err := analysis.NewRegistry(analysis.Config{})
	require.NoError(t, err)
	return registry
}
