package models

import "time"

// Export is the audit record of a generated report or data export.
// Write-only from the engine's perspective; read back only for history.
type Export struct {
	ID         int64          `json:"id"`
	ExportType string         `json:"export_type"` // "report" or "data"
	ReportType string         `json:"report_type"` // e.g. "comprehensive"
	Format     string         `json:"format"`      // "json", "csv", "html"
	Days       int            `json:"days"`
	Filename   string         `json:"filename"`
	FileSize   int64          `json:"file_size"`
	Parameters map[string]any `json:"parameters,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
