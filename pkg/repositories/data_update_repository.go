package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/harmonia-ir/intel-engine/pkg/apperrors"
	"github.com/harmonia-ir/intel-engine/pkg/database"
	"github.com/harmonia-ir/intel-engine/pkg/models"
)

// DataUpdateRepository persists ingestion-run audit records and
// enforces the in_progress -> success|failed state machine: terminal
// statuses are never reopened or overwritten.
type DataUpdateRepository interface {
	Create(ctx context.Context, upd *models.DataUpdate) error
	Finish(ctx context.Context, id uuid.UUID, status string, recordsProcessed int, errorMessage string, details map[string]any) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DataUpdate, error)
	ListRecent(ctx context.Context, limit int) ([]*models.DataUpdate, error)
}

type dataUpdateRepository struct {
	db *database.DB
}

// NewDataUpdateRepository creates a new DataUpdateRepository.
func NewDataUpdateRepository(db *database.DB) DataUpdateRepository {
	return &dataUpdateRepository{db: db}
}

var _ DataUpdateRepository = (*dataUpdateRepository)(nil)

func (r *dataUpdateRepository) Create(ctx context.Context, upd *models.DataUpdate) error {
	if upd.ID == uuid.Nil {
		upd.ID = uuid.New()
	}
	if upd.StartedAt.IsZero() {
		upd.StartedAt = time.Now()
	}
	upd.Status = models.UpdateStatusInProgress

	_, err := r.db.Exec(ctx, `
		INSERT INTO data_updates (id, update_type, status, started_at)
		VALUES ($1, $2, $3, $4)`,
		upd.ID, upd.UpdateType, upd.Status, upd.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create data update: %w", err)
	}

	return nil
}

func (r *dataUpdateRepository) Finish(ctx context.Context, id uuid.UUID, status string, recordsProcessed int, errorMessage string, details map[string]any) error {
	if status != models.UpdateStatusSuccess && status != models.UpdateStatusFailed {
		return fmt.Errorf("invalid terminal status %q", status)
	}

	var detailsJSON []byte
	if len(details) > 0 {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to marshal update details: %w", err)
		}
	}

	// The status guard makes finalization one-shot.
	tag, err := r.db.Exec(ctx, `
		UPDATE data_updates
		SET status = $2, completed_at = $3, records_processed = $4, error_message = $5, details = $6
		WHERE id = $1 AND status = $7`,
		id, status, time.Now(), recordsProcessed, errorMessage, detailsJSON,
		models.UpdateStatusInProgress,
	)
	if err != nil {
		return fmt.Errorf("failed to finish data update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUpdateFinalized
	}

	return nil
}

func (r *dataUpdateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DataUpdate, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, update_type, status, started_at, completed_at, records_processed, error_message, details
		FROM data_updates
		WHERE id = $1`, id)

	upd, err := scanDataUpdate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get data update: %w", err)
	}

	return upd, nil
}

func (r *dataUpdateRepository) ListRecent(ctx context.Context, limit int) ([]*models.DataUpdate, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, update_type, status, started_at, completed_at, records_processed, error_message, details
		FROM data_updates
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list data updates: %w", err)
	}
	defer rows.Close()

	updates := make([]*models.DataUpdate, 0)
	for rows.Next() {
		upd, err := scanDataUpdate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan data update: %w", err)
		}
		updates = append(updates, upd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating data updates: %w", err)
	}

	return updates, nil
}

func scanDataUpdate(row pgx.Row) (*models.DataUpdate, error) {
	var upd models.DataUpdate
	var detailsJSON []byte
	err := row.Scan(&upd.ID, &upd.UpdateType, &upd.Status, &upd.StartedAt,
		&upd.CompletedAt, &upd.RecordsProcessed, &upd.ErrorMessage, &detailsJSON)
	if err != nil {
		return nil, err
	}
	if len(detailsJSON) > 0 {
		if err := json.Unmarshal(detailsJSON, &upd.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal update details: %w", err)
		}
	}
	return &upd, nil
}
