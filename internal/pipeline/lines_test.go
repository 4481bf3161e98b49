package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/task"
)

// lineInput builds a stream of n distinct non-blank lines.
func lineInput(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "INFO: event %d\n", i)
	}
	return b.String()
}

func TestProcessLineStream_BatchesByCeiling(t *testing.T) {
	t.Parallel()

	// 10 lines at batch size 3 must produce 4 batches.
	p := newTestPipeline(t, task.NewMockRegistry("sentiment_analysis"), 3)

	summary, err := p.ProcessLineStream(context.Background(), strings.NewReader(lineInput(10)), LineOptions{
		TaskTypes:    []string{"sentiment_analysis"},
		BuildPayload: mockLinePayload,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RunModeLines, summary.Mode)
	assert.Equal(t, 10, summary.TotalProcessed)
	assert.Equal(t, 4, summary.SuccessfulBatches)
	assert.Equal(t, 0, summary.FailedBatches)
	assert.Equal(t, 4, summary.SuccessfulTasks)
	assert.Equal(t, 4, summary.PerType["sentiment_analysis"])
	assert.InDelta(t, 1.0, summary.SuccessRate, 1e-9)
	assert.False(t, summary.EndTime.Before(summary.StartTime))
}

func TestProcessLineStream_SingleItemBatches(t *testing.T) {
	t.Parallel()

	// 100 successful single-item batches must report a perfect success
	// rate and count every line as processed.
	p := newTestPipeline(t, task.NewMockRegistry("statistical_analysis"), 1)

	summary, err := p.ProcessLineStream(context.Background(), strings.NewReader(lineInput(100)), LineOptions{
		TaskTypes:    []string{"statistical_analysis"},
		BuildPayload: mockLinePayload,
	})
	require.NoError(t, err)

	assert.Equal(t, 100, summary.TotalProcessed)
	assert.Equal(t, 100, summary.SuccessfulBatches)
	assert.InDelta(t, 1.0, summary.SuccessRate, 1e-9)
	assert.Greater(t, summary.Throughput, 0.0)
}

func TestProcessLineStream_SkipsBlankLines(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, task.NewMockRegistry("data_cleaning"), 2)

	input := "first\n\n   \nsecond\n\t\nthird\n"
	summary, err := p.ProcessLineStream(context.Background(), strings.NewReader(input), LineOptions{
		TaskTypes:    []string{"data_cleaning"},
		BuildPayload: mockLinePayload,
	})
	require.NoError(t, err)

	// Three real lines at batch size 2: one full batch plus a final
	// partial batch flushed during drain.
	assert.Equal(t, 3, summary.TotalProcessed)
	assert.Equal(t, 2, summary.SuccessfulBatches)
}

func TestProcessLineStream_EmptyStream(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, task.NewMockRegistry("data_cleaning"), 5)

	summary, err := p.ProcessLineStream(context.Background(), strings.NewReader(""), LineOptions{
		TaskTypes:    []string{"data_cleaning"},
		BuildPayload: mockLinePayload,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.TotalProcessed)
	assert.Equal(t, 0, summary.SuccessfulBatches+summary.FailedBatches)
	assert.Zero(t, summary.SuccessRate)
}

func TestProcessLineStream_MultipleTaskTypes(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, task.NewMockRegistry("sentiment_analysis", "topic_classification"), 4)

	summary, err := p.ProcessLineStream(context.Background(), strings.NewReader(lineInput(8)), LineOptions{
		TaskTypes:    []string{"sentiment_analysis", "topic_classification"},
		BuildPayload: mockLinePayload,
	})
	require.NoError(t, err)

	// Two batches, each fanning out into both task types.
	assert.Equal(t, 8, summary.TotalProcessed)
	assert.Equal(t, 2, summary.SuccessfulBatches)
	assert.Equal(t, 4, summary.SuccessfulTasks)
	assert.Equal(t, 2, summary.PerType["sentiment_analysis"])
	assert.Equal(t, 2, summary.PerType["topic_classification"])
}

func TestProcessLineStream_HandlerFailuresDoNotAbort(t *testing.T) {
	t.Parallel()

	registry := task.NewMockRegistry("sentiment_analysis")
	require.NoError(t, task.RegisterMock(registry, "failing", func(ctx context.Context, payload task.MockPayload) (any, error) {
		return nil, errors.New("analysis backend unavailable")
	}))
	p := newTestPipeline(t, registry, 5)

	summary, err := p.ProcessLineStream(context.Background(), strings.NewReader(lineInput(10)), LineOptions{
		TaskTypes:    []string{"sentiment_analysis", "failing"},
		BuildPayload: mockLinePayload,
	})
	require.NoError(t, err)

	// Every batch contains one failing task, so no batch is fully
	// successful, yet the run itself completes.
	assert.Equal(t, 10, summary.TotalProcessed)
	assert.Equal(t, 0, summary.SuccessfulBatches)
	assert.Equal(t, 2, summary.FailedBatches)
	assert.Equal(t, 2, summary.SuccessfulTasks)
	assert.Equal(t, 2, summary.FailedTasks)
	assert.Zero(t, summary.SuccessRate)
}

func TestProcessLineStream_ExtractErrorAbortsRun(t *testing.T) {
	t.Parallel()

	registry := task.NewMockRegistry("sentiment_analysis")
	p := newTestPipeline(t, registry, 2)

	calls := 0
	summary, err := p.ProcessLineStream(context.Background(), strings.NewReader(lineInput(6)), LineOptions{
		TaskTypes:    []string{"sentiment_analysis"},
		BuildPayload: mockLinePayload,
		Extract: func(lines []string) ([]domain.LogEntry, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("malformed segment")
			}
			entries := make([]domain.LogEntry, len(lines))
			for i, line := range lines {
				entries[i] = domain.LogEntry{Source: "test", Raw: line, Message: line, Level: domain.LogLevelUnknown}
			}
			return entries, nil
		},
	})
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "extracting entries")

	// A failed run must not take the pool down with it.
	pending, err := p.pool.Enqueue(context.Background(), task.Spec{
		Type:    "sentiment_analysis",
		Payload: task.MockPayload{Message: "still alive"},
	})
	require.NoError(t, err)
	result, err := pending.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sentiment_analysis: still alive", result.Value)
}

func TestProcessLineStream_PayloadErrorAbortsRun(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, task.NewMockRegistry("sentiment_analysis"), 3)

	_, err := p.ProcessLineStream(context.Background(), strings.NewReader(lineInput(3)), LineOptions{
		TaskTypes: []string{"sentiment_analysis"},
		BuildPayload: func(taskType string, entries []domain.LogEntry) (any, error) {
			return nil, errors.New("no payload for you")
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, task.ErrInvalidPayload)
	assert.Contains(t, err.Error(), "building sentiment_analysis payload")
}

func TestProcessLineStream_Validation(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, task.NewMockRegistry("echo"), 2)

	t.Run("rejects nil reader", func(t *testing.T) {
		_, err := p.ProcessLineStream(context.Background(), nil, LineOptions{
			TaskTypes:    []string{"echo"},
			BuildPayload: mockLinePayload,
		})
		assert.Error(t, err)
	})

	t.Run("rejects empty task types", func(t *testing.T) {
		_, err := p.ProcessLineStream(context.Background(), strings.NewReader("x\n"), LineOptions{
			BuildPayload: mockLinePayload,
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "task type")
	})

	t.Run("rejects nil payload builder", func(t *testing.T) {
		_, err := p.ProcessLineStream(context.Background(), strings.NewReader("x\n"), LineOptions{
			TaskTypes: []string{"echo"},
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "payload builder")
	})
}

func TestProcessLineStream_ProgressObserver(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, task.NewMockRegistry("echo"), 4)

	var updates []LineProgress
	_, err := p.ProcessLineStream(context.Background(), strings.NewReader(lineInput(9)), LineOptions{
		TaskTypes:    []string{"echo"},
		BuildPayload: mockLinePayload,
		OnProgress: func(progress LineProgress) {
			updates = append(updates, progress)
		},
	})
	require.NoError(t, err)

	// 9 lines at batch size 4: updates after batches of 4, 8, and 9 lines.
	require.Len(t, updates, 3)
	assert.Equal(t, []int{4, 8, 9}, []int{updates[0].Lines, updates[1].Lines, updates[2].Lines})
	for i, update := range updates {
		assert.Equal(t, i+1, update.Batches)
		assert.GreaterOrEqual(t, update.Elapsed, time.Duration(0))
	}
}

func TestProcessLineStream_DefaultExtractor(t *testing.T) {
	t.Parallel()

	registry := task.NewRegistry()
	var captured []domain.LogEntry
	require.NoError(t, task.Register(registry, "capture", func(ctx context.Context, payload entriesPayload) (any, error) {
		captured = append(captured, payload.Entries...)
		return len(payload.Entries), nil
	}))
	p := newTestPipeline(t, registry, 10)

	input := "ERROR: disk full\nplain chatter\n"
	_, err := p.ProcessLineStream(context.Background(), strings.NewReader(input), LineOptions{
		Source:    "app.log",
		TaskTypes: []string{"capture"},
		BuildPayload: func(taskType string, entries []domain.LogEntry) (any, error) {
			return entriesPayload{Entries: entries}, nil
		},
	})
	require.NoError(t, err)

	require.Len(t, captured, 2)
	assert.Equal(t, "app.log", captured[0].Source)
	assert.Equal(t, domain.LogLevelError, captured[0].Level)
	assert.Equal(t, "disk full", captured[0].Message)
	assert.Equal(t, domain.LogLevelUnknown, captured[1].Level)
	assert.Equal(t, "plain chatter", captured[1].Message)
}

// entriesPayload carries extracted entries into a capturing handler.
type entriesPayload struct {
	Entries []domain.LogEntry `json:"entries"`
}
