package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/quillback/loglearn/internal/api/shared"
	"github.com/quillback/loglearn/internal/platform/logger"
	"github.com/quillback/loglearn/internal/redact"
	"github.com/quillback/loglearn/internal/service"
	"github.com/quillback/loglearn/internal/task"
)

// TaskHandler handles single-task and batch submission HTTP requests.
type TaskHandler struct {
	analysisService service.AnalysisService
	registry        *task.Registry
	logger          *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(
	analysisService service.AnalysisService,
	registry *task.Registry,
	logger *slog.Logger,
) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		analysisService: analysisService,
		registry:        registry,
		logger:          logger.With(slog.String("component", "task_handler")),
	}
}

// SubmitTask handles POST /api/tasks requests.
// It decodes the typed payload, submits the task and waits for its result.
func (h *TaskHandler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SubmitTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	spec, err := h.buildSpec(req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("submitting task",
		slog.String("type", spec.Type),
		slog.String("priority", string(spec.Priority)))

	result, err := h.analysisService.RunTask(r.Context(), spec)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to run task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskResultToResponse(result))
}

// SubmitBatch handles POST /api/batches requests.
// All task payloads are decoded up front; a batch with any undecodable
// task is rejected whole rather than partially submitted.
func (h *TaskHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SubmitBatchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	specs := make([]task.Spec, len(req.Tasks))
	for i, taskReq := range req.Tasks {
		spec, err := h.buildSpec(taskReq)
		if err != nil {
			statusCode := MapErrorToStatusCode(err)
			message := fmt.Sprintf("Task %d: %s", i+1, GetSafeErrorMessage(err))
			shared.RespondWithErrorAndLog(w, r, statusCode, message,
				fmt.Errorf("task %d: %w", i+1, err))
			return
		}
		specs[i] = spec
	}

	log.Debug("submitting batch", slog.Int("task_count", len(specs)))

	batch, err := h.analysisService.RunBatch(r.Context(), specs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to run batch")
		return
	}

	log.Debug("batch settled",
		slog.Int("successful", batch.Successful),
		slog.Int("failed", batch.Failed))
	shared.RespondWithJSON(w, r, http.StatusOK, batchToResponse(batch, redact.Error))
}

// buildSpec converts a submission request into a task.Spec, decoding the
// raw payload into the Go type registered for the task type.
func (h *TaskHandler) buildSpec(req SubmitTaskRequest) (task.Spec, error) {
	priority, err := parsePriority(req.Priority)
	if err != nil {
		return task.Spec{}, err
	}

	payload, err := h.registry.DecodePayload(req.Type, req.Payload)
	if err != nil {
		return task.Spec{}, err
	}

	return task.Spec{
		Type:     req.Type,
		Payload:  payload,
		Priority: priority,
	}, nil
}
