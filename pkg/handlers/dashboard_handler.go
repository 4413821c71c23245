package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/query"
	"github.com/harmonia-ir/intel-engine/pkg/services"
)

// DashboardHandler serves the dashboard aggregate views.
type DashboardHandler struct {
	svc    services.DashboardService
	logger *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the dashboard handler's routes on the given mux.
func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard/stats", h.Stats)
	mux.HandleFunc("GET /api/dashboard/filtered", h.FilteredStats)
}

// Stats handles GET /api/dashboard/stats requests.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.logger.Error("dashboard stats failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "stats_failed", "failed to compute dashboard stats")
		return
	}

	if err := WriteJSON(w, http.StatusOK, stats); err != nil {
		h.logger.Error("Failed to encode dashboard stats", zap.Error(err))
	}
}

// FilteredStats handles GET /api/dashboard/filtered requests.
// Accepts days, severity and sources (comma-separated) parameters.
func (h *DashboardHandler) FilteredStats(w http.ResponseWriter, r *http.Request) {
	days := intParam(r, "days", 0)
	band := r.URL.Query().Get("severity")
	sources := query.ParseSourceList(r.URL.Query().Get("sources"))

	stats, err := h.svc.FilteredStats(r.Context(), days, band, sources)
	if err != nil {
		h.logger.Error("filtered dashboard stats failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "stats_failed", "failed to compute dashboard stats")
		return
	}

	if err := WriteJSON(w, http.StatusOK, stats); err != nil {
		h.logger.Error("Failed to encode dashboard stats", zap.Error(err))
	}
}
