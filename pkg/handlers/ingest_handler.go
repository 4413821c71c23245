package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/services"
)

// IngestHandler serves the manual ingestion trigger and run history.
type IngestHandler struct {
	svc    services.IngestService
	logger *zap.Logger
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(svc services.IngestService, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the ingest handler's routes on the given mux.
func (h *IngestHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ingest/run", h.Run)
	mux.HandleFunc("GET /api/ingest/history", h.History)
}

type ingestRequest struct {
	Mode string `json:"mode"`
}

// Run handles POST /api/ingest/run requests. The run is synchronous;
// the response carries the finalized audit record.
func (h *IngestHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if r.Body != nil {
		// A missing or malformed body defaults to a replace run.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if req.Mode != "" && req.Mode != services.ModeReplace && req.Mode != services.ModeAppend {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_mode", "mode must be replace or append")
		return
	}

	upd, err := h.svc.Run(r.Context(), req.Mode)
	if err != nil {
		h.logger.Error("ingestion run failed", zap.Error(err))
		if upd != nil {
			// The run failed but the audit record tells the caller why.
			_ = WriteJSON(w, http.StatusBadGateway, upd)
			return
		}
		_ = ErrorResponse(w, http.StatusInternalServerError, "ingest_failed", "failed to run ingestion")
		return
	}

	if err := WriteJSON(w, http.StatusOK, upd); err != nil {
		h.logger.Error("Failed to encode ingestion response", zap.Error(err))
	}
}

// History handles GET /api/ingest/history requests.
func (h *IngestHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.History(r.Context())
	if err != nil {
		h.logger.Error("ingestion history failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "history_failed", "failed to load ingestion history")
		return
	}

	if err := WriteJSON(w, http.StatusOK, history); err != nil {
		h.logger.Error("Failed to encode ingestion history", zap.Error(err))
	}
}
