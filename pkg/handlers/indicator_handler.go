package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/services"
)

// IndicatorHandler serves the indicator search API.
type IndicatorHandler struct {
	svc    services.IndicatorService
	logger *zap.Logger
}

// NewIndicatorHandler creates a new IndicatorHandler.
func NewIndicatorHandler(svc services.IndicatorService, logger *zap.Logger) *IndicatorHandler {
	return &IndicatorHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the indicator handler's routes on the given mux.
func (h *IndicatorHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/indicators", h.Search)
	mux.HandleFunc("GET /api/filter-options", h.FilterOptions)
}

// Search handles GET /api/indicators requests. All filter, sort and
// pagination parameters are optional; malformed values degrade to
// defaults rather than erroring.
func (h *IndicatorHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := services.SearchRequest{
		SearchTerm:    q.Get("search"),
		IndicatorType: q.Get("type"),
		SeverityMin:   q.Get("severity_min"),
		SeverityMax:   q.Get("severity_max"),
		DateFrom:      q.Get("date_from"),
		DateTo:        q.Get("date_to"),
		Source:        q.Get("source"),
		SortBy:        q.Get("sort_by"),
		SortOrder:     q.Get("sort_order"),
		Page:          intParam(r, "page", 1),
		PerPage:       intParam(r, "per_page", 0),
	}

	result, err := h.svc.Search(r.Context(), req)
	if err != nil {
		h.logger.Error("indicator search failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "search_failed", "failed to search indicators")
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode search response", zap.Error(err))
	}
}

// FilterOptions handles GET /api/filter-options requests.
func (h *IndicatorHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.FilterOptions(r.Context())
	if err != nil {
		h.logger.Error("filter options failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "filter_options_failed", "failed to load filter options")
		return
	}

	if err := WriteJSON(w, http.StatusOK, opts); err != nil {
		h.logger.Error("Failed to encode filter options", zap.Error(err))
	}
}
