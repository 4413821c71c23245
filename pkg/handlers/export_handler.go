package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/query"
	"github.com/harmonia-ir/intel-engine/pkg/services"
)

// ExportHandler serves the data export API.
type ExportHandler struct {
	svc    services.ExportService
	logger *zap.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc services.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the export handler's routes on the given mux.
func (h *ExportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/exports", h.Export)
	mux.HandleFunc("GET /api/exports/history", h.History)
}

type exportRequest struct {
	Format string `json:"format"`
	Days   int    `json:"days"`
	Type   string `json:"type"`
	Source string `json:"source"`
}

type exportResponse struct {
	Filename string `json:"filename"`
	FileSize int64  `json:"file_size"`
	Format   string `json:"format"`
	Audited  bool   `json:"audited"`
}

// Export handles POST /api/exports requests.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	req := exportRequest{Format: services.FormatJSON}
	if r.Body != nil {
		// A malformed body degrades to the default JSON export.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if req.Format != services.FormatJSON && req.Format != services.FormatCSV {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_format", "format must be json or csv")
		return
	}

	f := query.Filters{
		IndicatorType: req.Type,
		Source:        req.Source,
	}
	exp, audited, err := h.svc.ExportData(r.Context(), req.Format, req.Days, f)
	if err != nil {
		h.logger.Error("export failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "export_failed", "failed to generate export")
		return
	}

	resp := exportResponse{
		Filename: exp.Filename,
		FileSize: exp.FileSize,
		Format:   exp.Format,
		Audited:  audited,
	}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode export response", zap.Error(err))
	}
}

// History handles GET /api/exports/history requests.
func (h *ExportHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.History(r.Context())
	if err != nil {
		h.logger.Error("export history failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "history_failed", "failed to load export history")
		return
	}

	if err := WriteJSON(w, http.StatusOK, history); err != nil {
		h.logger.Error("Failed to encode export history", zap.Error(err))
	}
}
