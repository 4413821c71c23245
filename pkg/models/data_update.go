package models

import (
	"time"

	"github.com/google/uuid"
)

// Data update statuses. A run starts as in_progress and ends in exactly
// one of success or failed; terminal states are never reopened.
const (
	UpdateStatusInProgress = "in_progress"
	UpdateStatusSuccess    = "success"
	UpdateStatusFailed     = "failed"
)

// DataUpdate is the audit record of one ingestion run.
type DataUpdate struct {
	ID               uuid.UUID      `json:"id"`
	UpdateType       string         `json:"update_type"` // "replace" or "append"
	Status           string         `json:"status"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	RecordsProcessed int            `json:"records_processed"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	Details          map[string]any `json:"details,omitempty"`
}

// Finalized reports whether the run has reached a terminal status.
func (u *DataUpdate) Finalized() bool {
	return u.Status == UpdateStatusSuccess || u.Status == UpdateStatusFailed
}
