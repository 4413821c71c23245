package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/query"
	"github.com/harmonia-ir/intel-engine/pkg/services"
)

const defaultAnalysisDays = 30

// AnalyticsHandler serves the temporal, trend and geographic analyses.
type AnalyticsHandler struct {
	svc    services.AnalyticsService
	logger *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc services.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the analytics handler's routes on the given mux.
func (h *AnalyticsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/analysis/temporal", h.Temporal)
	mux.HandleFunc("GET /api/analysis/trends", h.Trends)
	mux.HandleFunc("GET /api/analysis/geographic", h.Geographic)
}

// Temporal handles GET /api/analysis/temporal requests.
func (h *AnalyticsHandler) Temporal(w http.ResponseWriter, r *http.Request) {
	days := intParam(r, "days", defaultAnalysisDays)
	source := r.URL.Query().Get("source")

	analysis, err := h.svc.Temporal(r.Context(), days, source)
	if err != nil {
		h.logger.Error("temporal analysis failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "analysis_failed", "failed to compute temporal analysis")
		return
	}

	if err := WriteJSON(w, http.StatusOK, analysis); err != nil {
		h.logger.Error("Failed to encode temporal analysis", zap.Error(err))
	}
}

// Trends handles GET /api/analysis/trends requests.
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	days := intParam(r, "days", defaultAnalysisDays)

	trends, err := h.svc.Trends(r.Context(), days)
	if err != nil {
		h.logger.Error("trend analysis failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "analysis_failed", "failed to compute trend analysis")
		return
	}

	if err := WriteJSON(w, http.StatusOK, trends); err != nil {
		h.logger.Error("Failed to encode trend analysis", zap.Error(err))
	}
}

// Geographic handles GET /api/analysis/geographic requests.
func (h *AnalyticsHandler) Geographic(w http.ResponseWriter, r *http.Request) {
	days := intParam(r, "days", defaultAnalysisDays)
	band := r.URL.Query().Get("severity")
	sources := query.ParseSourceList(r.URL.Query().Get("sources"))

	analysis, err := h.svc.Geographic(r.Context(), days, band, sources)
	if err != nil {
		h.logger.Error("geographic analysis failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "analysis_failed", "failed to compute geographic analysis")
		return
	}

	if err := WriteJSON(w, http.StatusOK, analysis); err != nil {
		h.logger.Error("Failed to encode geographic analysis", zap.Error(err))
	}
}
