package api

import (
	"log/slog"
	"net/http"

	"github.com/quillback/loglearn/internal/api/shared"
	"github.com/quillback/loglearn/internal/service"
)

// StatsHandler handles pool observability HTTP requests.
type StatsHandler struct {
	analysisService service.AnalysisService
	logger          *slog.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(analysisService service.AnalysisService, logger *slog.Logger) *StatsHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StatsHandler")
	}

	return &StatsHandler{
		analysisService: analysisService,
		logger:          logger.With(slog.String("component", "stats_handler")),
	}
}

// GetPoolStats handles GET /api/pool/stats requests.
// The snapshot is taken from the coordinator's counters and may trail
// in-flight activity by a beat.
func (h *StatsHandler) GetPoolStats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.analysisService.PoolStats())
}
