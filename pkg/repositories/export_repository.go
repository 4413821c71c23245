package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harmonia-ir/intel-engine/pkg/database"
	"github.com/harmonia-ir/intel-engine/pkg/models"
)

// ExportRepository persists export audit records. Append-only: rows are
// inserted once and read back only for the history listing.
type ExportRepository interface {
	Create(ctx context.Context, exp *models.Export) error
	ListRecent(ctx context.Context, limit int) ([]*models.Export, error)
}

type exportRepository struct {
	db *database.DB
}

// NewExportRepository creates a new ExportRepository.
func NewExportRepository(db *database.DB) ExportRepository {
	return &exportRepository{db: db}
}

var _ ExportRepository = (*exportRepository)(nil)

func (r *exportRepository) Create(ctx context.Context, exp *models.Export) error {
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now()
	}

	var paramsJSON []byte
	if len(exp.Parameters) > 0 {
		var err error
		paramsJSON, err = json.Marshal(exp.Parameters)
		if err != nil {
			return fmt.Errorf("failed to marshal export parameters: %w", err)
		}
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO exports (export_type, report_type, format, days, filename, file_size, parameters, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		exp.ExportType, exp.ReportType, exp.Format, exp.Days,
		exp.Filename, exp.FileSize, paramsJSON, exp.CreatedAt,
	).Scan(&exp.ID)
	if err != nil {
		return fmt.Errorf("failed to create export record: %w", err)
	}

	return nil
}

func (r *exportRepository) ListRecent(ctx context.Context, limit int) ([]*models.Export, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, export_type, report_type, format, days, filename, file_size, parameters, created_at
		FROM exports
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	exports := make([]*models.Export, 0)
	for rows.Next() {
		var exp models.Export
		var paramsJSON []byte
		err := rows.Scan(&exp.ID, &exp.ExportType, &exp.ReportType, &exp.Format, &exp.Days,
			&exp.Filename, &exp.FileSize, &paramsJSON, &exp.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		if len(paramsJSON) > 0 {
			if err := json.Unmarshal(paramsJSON, &exp.Parameters); err != nil {
				return nil, fmt.Errorf("failed to unmarshal export parameters: %w", err)
			}
		}
		exports = append(exports, &exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exports: %w", err)
	}

	return exports, nil
}
