package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillback/loglearn/internal/analysis"
	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/pipeline"
	"github.com/quillback/loglearn/internal/service"
	"github.com/quillback/loglearn/internal/task"
)

func TestStartLineRun(t *testing.T) {
	t.Parallel()

	runID := uuid.New()
	var capturedOpts pipeline.LineOptions
	var capturedBody string

	mockService := &mockAnalysisService{
		runLineStreamFn: func(ctx context.Context, reader io.Reader, opts pipeline.LineOptions) (*service.RunReport, error) {
			content, err := io.ReadAll(reader)
			require.NoError(t, err)
			capturedBody = string(content)
			capturedOpts = opts
			return &service.RunReport{
				RunID: runID,
				Summary: &pipeline.RunSummary{
					Mode:              "lines",
					TotalProcessed:    2,
					SuccessfulBatches: 1,
				},
			}, nil
		},
	}
	handler := NewRunHandler(mockService, testRegistry(t), testLogger())

	target := "/api/runs/lines?types=sentiment_analysis,topic_classification&batch_size=25&source=api-upload&priority=high"
	req := httptest.NewRequest("POST", target, strings.NewReader("line one\nline two\n"))
	recorder := httptest.NewRecorder()

	handler.StartLineRun(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	assert.Equal(t, "line one\nline two\n", capturedBody)
	assert.Equal(t, []string{"sentiment_analysis", "topic_classification"}, capturedOpts.TaskTypes)
	assert.Equal(t, 25, capturedOpts.BatchSize)
	assert.Equal(t, "api-upload", capturedOpts.Source)
	assert.Equal(t, task.PriorityHigh, capturedOpts.Priority)
	assert.NotNil(t, capturedOpts.BuildPayload)

	var report service.RunReport
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&report))
	assert.Equal(t, runID, report.RunID)
	require.NotNil(t, report.Summary)
	assert.Equal(t, 2, report.Summary.TotalProcessed)
}

func TestStartLineRunRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		serviceErr error
		wantStatus int
		wantErrMsg string
	}{
		{
			name:       "missing types",
			target:     "/api/runs/lines",
			wantStatus: http.StatusBadRequest,
			wantErrMsg: "types query parameter is required",
		},
		{
			name:       "unknown type",
			target:     "/api/runs/lines?types=sentiment_analysis,no_such_type",
			wantStatus: http.StatusBadRequest,
			wantErrMsg: "Unknown task type",
		},
		{
			name:       "non-numeric batch size",
			target:     "/api/runs/lines?types=sentiment_analysis&batch_size=lots",
			wantStatus: http.StatusBadRequest,
			wantErrMsg: "Validation error",
		},
		{
			name:       "invalid priority",
			target:     "/api/runs/lines?types=sentiment_analysis&priority=urgent",
			wantStatus: http.StatusBadRequest,
			wantErrMsg: "Validation error",
		},
		{
			name:       "pipeline payload rejection",
			target:     "/api/runs/lines?types=sentiment_analysis",
			serviceErr: fmt.Errorf("building payload for batch 1: %w", task.ErrInvalidPayload),
			wantStatus: http.StatusBadRequest,
			wantErrMsg: "Invalid task payload",
		},
		{
			name:       "pipeline failure",
			target:     "/api/runs/lines?types=sentiment_analysis",
			serviceErr: errors.New("reading stream: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantErrMsg: "Failed to run line pipeline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceCalled := false
			mockService := &mockAnalysisService{
				runLineStreamFn: func(ctx context.Context, reader io.Reader, opts pipeline.LineOptions) (*service.RunReport, error) {
					serviceCalled = true
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &service.RunReport{RunID: uuid.New(), Summary: &pipeline.RunSummary{}}, nil
				},
			}
			handler := NewRunHandler(mockService, testRegistry(t), testLogger())

			req := httptest.NewRequest("POST", tt.target, strings.NewReader("a line\n"))
			recorder := httptest.NewRecorder()

			handler.StartLineRun(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			errResp := decodeErrorResponse(t, recorder)
			assert.Contains(t, errResp.Error, tt.wantErrMsg)
			assert.NotContains(t, errResp.Error, "connection reset", "internal details must not leak")

			if tt.serviceErr == nil {
				assert.False(t, serviceCalled, "rejected request must not start a run")
			}
		})
	}
}

func TestStartRecordsRun(t *testing.T) {
	t.Parallel()

	runID := uuid.New()
	explicitTime := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	var capturedTurns []domain.ConversationTurn
	var capturedOpts pipeline.RecordOptions

	mockService := &mockAnalysisService{
		runRecordsFn: func(ctx context.Context, turns []domain.ConversationTurn, opts pipeline.RecordOptions) (*service.RunReport, error) {
			capturedTurns = turns
			capturedOpts = opts
			return &service.RunReport{
				RunID: runID,
				Summary: &pipeline.RunSummary{
					Mode:           "records",
					TotalProcessed: len(turns),
				},
			}, nil
		},
	}
	handler := NewRunHandler(mockService, testRegistry(t), testLogger())

	payload := map[string]interface{}{
		"records": []map[string]interface{}{
			{"speaker": "user", "text": "the deploy failed again"},
			{"speaker": "assistant", "text": "checking the release logs", "timestamp": explicitTime},
		},
		"types":    []string{analysis.TypeDialoguePattern},
		"priority": "normal",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/runs/records", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	handler.StartRecordsRun(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	require.Len(t, capturedTurns, 2)
	assert.Equal(t, "user", capturedTurns[0].Speaker)
	assert.Equal(t, "the deploy failed again", capturedTurns[0].Text)
	assert.False(t, capturedTurns[0].Timestamp.IsZero(), "missing timestamp is stamped with now")
	assert.True(t, capturedTurns[1].Timestamp.Equal(explicitTime), "explicit timestamp is preserved")

	assert.Equal(t, []string{analysis.TypeDialoguePattern}, capturedOpts.TaskTypes)
	assert.Equal(t, task.PriorityNormal, capturedOpts.Priority)
	assert.NotNil(t, capturedOpts.BuildPayload)

	var report service.RunReport
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&report))
	assert.Equal(t, runID, report.RunID)
	assert.Equal(t, 2, report.Summary.TotalProcessed)
}

func TestStartRecordsRunRejections(t *testing.T) {
	t.Parallel()

	validRecord := map[string]interface{}{"speaker": "user", "text": "hello"}

	tests := []struct {
		name       string
		payload    interface{}
		serviceErr error
		wantStatus int
		wantErrMsg string
	}{
		{
			name: "missing records",
			payload: map[string]interface{}{
				"types": []string{analysis.TypeSentimentAnalysis},
			},
			wantStatus: http.StatusBadRequest,
			wantErrMsg: "Invalid Records",
		},
		{
			name: "record missing speaker",
			payload: map[string]interface{}{
				"records": []map[string]interface{}{{"text": "hello"}},
				"types":   []string{analysis.TypeSentimentAnalysis},
			},
			wantStatus: http.StatusBadRequest,
			wantErrMsg: "Invalid Speaker",
		},
		{
			name: "missing types",
			payload: map[string]interface{}{
				"records": []map[string]interface{}{validRecord},
			},
			wantStatus: http.StatusBadRequest,
			wantErrMsg: "Invalid Types",
		},
		{
			name: "unknown type",
			payload: map[string]interface{}{
				"records": []map[string]interface{}{validRecord},
				"types":   []string{"no_such_type"},
			},
			wantStatus: http.StatusBadRequest,
			wantErrMsg: "Unknown task type",
		},
		{
			name:       "invalid JSON body",
			payload:    `{"records": [`,
			wantStatus: http.StatusBadRequest,
			wantErrMsg: "Invalid request format",
		},
		{
			name: "pipeline failure",
			payload: map[string]interface{}{
				"records": []map[string]interface{}{validRecord},
				"types":   []string{analysis.TypeSentimentAnalysis},
			},
			serviceErr: errors.New("pool crashed"),
			wantStatus: http.StatusInternalServerError,
			wantErrMsg: "Failed to run record pipeline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mockAnalysisService{
				runRecordsFn: func(ctx context.Context, turns []domain.ConversationTurn, opts pipeline.RecordOptions) (*service.RunReport, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &service.RunReport{RunID: uuid.New(), Summary: &pipeline.RunSummary{}}, nil
				},
			}
			handler := NewRunHandler(mockService, testRegistry(t), testLogger())

			recorder := postJSON(t, handler.StartRecordsRun, "/api/runs/records", tt.payload)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			errResp := decodeErrorResponse(t, recorder)
			assert.Contains(t, errResp.Error, tt.wantErrMsg)
		})
	}
}

// getRunVia mounts the handler on a chi router so path parameters resolve
// the way they do in production.
func getRunVia(t *testing.T, handler *RunHandler, target string) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Get("/api/runs/{id}", handler.GetRun)
	router.Get("/api/runs", handler.ListRuns)

	req := httptest.NewRequest("GET", target, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestGetRun(t *testing.T) {
	t.Parallel()

	runID := uuid.New()
	startedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	completedAt := startedAt.Add(90 * time.Second)

	completedRun := &domain.Run{
		ID:                runID,
		Mode:              domain.RunModeLines,
		Status:            domain.RunStatusCompleted,
		TotalProcessed:    40,
		SuccessfulBatches: 3,
		FailedBatches:     1,
		Throughput:        12.5,
		StartedAt:         startedAt,
		CompletedAt:       completedAt,
		CreatedAt:         startedAt,
	}

	t.Run("completed run", func(t *testing.T) {
		mockService := &mockAnalysisService{
			getRunFn: func(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
				assert.Equal(t, runID, id)
				return completedRun, nil
			},
		}
		handler := NewRunHandler(mockService, testRegistry(t), testLogger())

		recorder := getRunVia(t, handler, "/api/runs/"+runID.String())

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp RunResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, runID.String(), resp.ID)
		assert.Equal(t, "lines", resp.Mode)
		assert.Equal(t, "completed", resp.Status)
		assert.Equal(t, 40, resp.TotalProcessed)
		assert.InDelta(t, 0.75, resp.SuccessRate, 0.001)
		require.NotNil(t, resp.CompletedAt)
		assert.True(t, resp.CompletedAt.Equal(completedAt))
	})

	t.Run("running run omits completion time", func(t *testing.T) {
		running := *completedRun
		running.Status = domain.RunStatusRunning
		running.CompletedAt = time.Time{}

		mockService := &mockAnalysisService{
			getRunFn: func(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
				return &running, nil
			},
		}
		handler := NewRunHandler(mockService, testRegistry(t), testLogger())

		recorder := getRunVia(t, handler, "/api/runs/"+runID.String())

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp RunResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "running", resp.Status)
		assert.Nil(t, resp.CompletedAt)
	})

	t.Run("malformed ID", func(t *testing.T) {
		handler := NewRunHandler(&mockAnalysisService{}, testRegistry(t), testLogger())

		recorder := getRunVia(t, handler, "/api/runs/not-a-uuid")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		errResp := decodeErrorResponse(t, recorder)
		assert.Contains(t, errResp.Error, "Invalid ID format")
	})

	t.Run("run not found", func(t *testing.T) {
		mockService := &mockAnalysisService{
			getRunFn: func(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
				return nil, service.ErrRunNotFound
			},
		}
		handler := NewRunHandler(mockService, testRegistry(t), testLogger())

		recorder := getRunVia(t, handler, "/api/runs/"+uuid.New().String())

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		errResp := decodeErrorResponse(t, recorder)
		assert.Equal(t, "Run not found", errResp.Error)
	})

	t.Run("history disabled", func(t *testing.T) {
		mockService := &mockAnalysisService{
			getRunFn: func(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
				return nil, service.ErrHistoryDisabled
			},
		}
		handler := NewRunHandler(mockService, testRegistry(t), testLogger())

		recorder := getRunVia(t, handler, "/api/runs/"+uuid.New().String())

		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
		errResp := decodeErrorResponse(t, recorder)
		assert.Equal(t, "Run history is not available", errResp.Error)
	})
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		var gotLimit, gotOffset int
		mockService := &mockAnalysisService{
			listRunsFn: func(ctx context.Context, limit, offset int) ([]*domain.Run, error) {
				gotLimit, gotOffset = limit, offset
				run, err := domain.NewRun(domain.RunModeRecords)
				require.NoError(t, err)
				return []*domain.Run{run}, nil
			},
		}
		handler := NewRunHandler(mockService, testRegistry(t), testLogger())

		recorder := getRunVia(t, handler, "/api/runs")

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, defaultRunListLimit, gotLimit)
		assert.Equal(t, 0, gotOffset)

		var resp RunListResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Len(t, resp.Runs, 1)
		assert.Equal(t, defaultRunListLimit, resp.Limit)
	})

	t.Run("explicit paging", func(t *testing.T) {
		var gotLimit, gotOffset int
		mockService := &mockAnalysisService{
			listRunsFn: func(ctx context.Context, limit, offset int) ([]*domain.Run, error) {
				gotLimit, gotOffset = limit, offset
				return nil, nil
			},
		}
		handler := NewRunHandler(mockService, testRegistry(t), testLogger())

		recorder := getRunVia(t, handler, "/api/runs?limit=5&offset=10")

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, 5, gotLimit)
		assert.Equal(t, 10, gotOffset)
	})

	t.Run("limit is capped", func(t *testing.T) {
		var gotLimit int
		mockService := &mockAnalysisService{
			listRunsFn: func(ctx context.Context, limit, offset int) ([]*domain.Run, error) {
				gotLimit = limit
				return nil, nil
			},
		}
		handler := NewRunHandler(mockService, testRegistry(t), testLogger())

		recorder := getRunVia(t, handler, "/api/runs?limit=5000")

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, maxRunListLimit, gotLimit)
	})

	t.Run("non-numeric limit", func(t *testing.T) {
		handler := NewRunHandler(&mockAnalysisService{}, testRegistry(t), testLogger())

		recorder := getRunVia(t, handler, "/api/runs?limit=everything")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("history disabled", func(t *testing.T) {
		mockService := &mockAnalysisService{
			listRunsFn: func(ctx context.Context, limit, offset int) ([]*domain.Run, error) {
				return nil, service.ErrHistoryDisabled
			},
		}
		handler := NewRunHandler(mockService, testRegistry(t), testLogger())

		recorder := getRunVia(t, handler, "/api/runs")

		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})
}
