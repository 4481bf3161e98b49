package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/quillback/loglearn/internal/analysis"
	"github.com/quillback/loglearn/internal/api/shared"
	"github.com/quillback/loglearn/internal/domain"
	"github.com/quillback/loglearn/internal/pipeline"
	"github.com/quillback/loglearn/internal/platform/logger"
	"github.com/quillback/loglearn/internal/redact"
	"github.com/quillback/loglearn/internal/service"
	"github.com/quillback/loglearn/internal/task"
)

// maxRunListLimit caps the page size of run listings.
const maxRunListLimit = 100

// defaultRunListLimit is the page size used when the client does not ask
// for one.
const defaultRunListLimit = 20

// RunHandler handles pipeline run HTTP requests: starting line-mode and
// record-mode runs and reading back recorded run history.
type RunHandler struct {
	analysisService service.AnalysisService
	registry        *task.Registry
	logger          *slog.Logger
}

// NewRunHandler creates a new RunHandler
func NewRunHandler(
	analysisService service.AnalysisService,
	registry *task.Registry,
	logger *slog.Logger,
) *RunHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RunHandler")
	}

	return &RunHandler{
		analysisService: analysisService,
		registry:        registry,
		logger:          logger.With(slog.String("component", "run_handler")),
	}
}

// StartLineRun handles POST /api/runs/lines requests.
// The request body is the raw line stream; run parameters come from query
// parameters: types (comma-separated, required), batch_size, source and
// priority. The call blocks until the run settles and returns its report.
func (h *RunHandler) StartLineRun(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	types := splitCSV(r.URL.Query().Get("types"))
	if len(types) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "types query parameter is required")
		return
	}
	if err := h.checkTaskTypes(types); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	batchSize, err := queryInt(r, "batch_size", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	priority, err := parsePriority(r.URL.Query().Get("priority"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("starting line run",
		slog.Any("types", types),
		slog.Int("batch_size", batchSize),
		slog.String("priority", string(priority)))

	report, err := h.analysisService.RunLineStream(r.Context(), r.Body, pipeline.LineOptions{
		Source:       r.URL.Query().Get("source"),
		BatchSize:    batchSize,
		TaskTypes:    types,
		Priority:     priority,
		BuildPayload: analysis.BatchPayload,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to run line pipeline")
		return
	}

	log.Debug("line run settled",
		slog.String("run_id", report.RunID.String()),
		slog.Int("total_processed", report.Summary.TotalProcessed))
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// StartRecordsRun handles POST /api/runs/records requests.
// Each record forms its own task group; the call blocks until the run
// settles and returns its report.
func (h *RunHandler) StartRecordsRun(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RecordsRunRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	if err := h.checkTaskTypes(req.Types); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	priority, err := parsePriority(req.Priority)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	turns := make([]domain.ConversationTurn, len(req.Records))
	for i, record := range req.Records {
		timestamp := record.Timestamp
		if timestamp.IsZero() {
			timestamp = time.Now().UTC()
		}
		turns[i] = domain.ConversationTurn{
			Speaker:   record.Speaker,
			Text:      record.Text,
			Timestamp: timestamp,
		}
	}

	log.Debug("starting record run",
		slog.Any("types", req.Types),
		slog.Int("record_count", len(turns)),
		slog.String("priority", string(priority)))

	report, err := h.analysisService.RunRecords(r.Context(), turns, pipeline.RecordOptions{
		TaskTypes:    req.Types,
		Priority:     priority,
		BuildPayload: analysis.TurnPayload,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to run record pipeline")
		return
	}

	log.Debug("record run settled",
		slog.String("run_id", report.RunID.String()),
		slog.Int("total_processed", report.Summary.TotalProcessed))
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// GetRun handles GET /api/runs/{id} requests.
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	run, err := h.analysisService.GetRun(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get run")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, runToResponse(run))
}

// ListRuns handles GET /api/runs requests.
// Supports limit and offset query parameters; limit is capped.
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultRunListLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if limit > maxRunListLimit {
		limit = maxRunListLimit
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	runs, err := h.analysisService.ListRuns(r.Context(), limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list runs")
		return
	}

	responses := make([]RunResponse, len(runs))
	for i, run := range runs {
		responses[i] = runToResponse(run)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RunListResponse{
		Runs:   responses,
		Limit:  limit,
		Offset: offset,
	})
}

// checkTaskTypes verifies every requested type is registered before a run
// starts, so an unknown type fails the request instead of the run.
func (h *RunHandler) checkTaskTypes(types []string) error {
	for _, taskType := range types {
		if !h.registry.Has(taskType) {
			return fmt.Errorf("%s: %w", taskType, task.ErrUnknownTaskType)
		}
	}
	return nil
}
