package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/apperrors"
	"github.com/harmonia-ir/intel-engine/pkg/services"
)

// InsightHandler serves the AI insights API.
type InsightHandler struct {
	svc    services.InsightService
	logger *zap.Logger
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(svc services.InsightService, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the insight handler's routes on the given mux.
func (h *InsightHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/insights", h.Ask)
	mux.HandleFunc("GET /api/insights/history", h.History)
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask handles POST /api/insights requests.
func (h *InsightHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with a question field")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "question must not be empty")
		return
	}

	answer, err := h.svc.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoInsightClient) {
			_ = ErrorResponse(w, http.StatusServiceUnavailable, "no_provider", "no AI provider is configured")
			return
		}
		h.logger.Error("insight request failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "insight_failed", "failed to answer question")
		return
	}

	if err := WriteJSON(w, http.StatusOK, answer); err != nil {
		h.logger.Error("Failed to encode insight response", zap.Error(err))
	}
}

// History handles GET /api/insights/history requests.
func (h *InsightHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.History(r.Context())
	if err != nil {
		h.logger.Error("insight history failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "history_failed", "failed to load insight history")
		return
	}

	if err := WriteJSON(w, http.StatusOK, history); err != nil {
		h.logger.Error("Failed to encode insight history", zap.Error(err))
	}
}
