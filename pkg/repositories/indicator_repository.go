package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/harmonia-ir/intel-engine/pkg/database"
	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/query"
)

// BucketOrder selects how grouped counts are sorted.
type BucketOrder int

const (
	// OrderByLabel sorts buckets by their label ascending.
	OrderByLabel BucketOrder = iota
	// OrderByCount sorts buckets by count descending, label ascending
	// as tie-break.
	OrderByCount
)

// groupableColumns is the closed set of fields CountBy and
// DistinctValues accept. Unknown names fall back to indicator_type.
var groupableColumns = map[string]string{
	"indicator_type": "indicator_type",
	"source":         "source",
	"severity_score": "severity_score",
	"date_added":     "date_added",
}

// IndicatorRepository provides read access to the indicator fact table
// plus the bulk-load operations used by ingestion. All query methods
// are side-effect free and safe to run concurrently.
type IndicatorRepository interface {
	Search(ctx context.Context, f query.Filters, s query.Sort, p query.Page) ([]*models.Indicator, int64, error)
	// List is the unpaginated variant of Search, used by exports.
	List(ctx context.Context, f query.Filters, s query.Sort) ([]*models.Indicator, error)
	Count(ctx context.Context, f query.Filters) (int64, error)
	CountBy(ctx context.Context, field string, f query.Filters, order BucketOrder) ([]models.Bucket, error)
	DistinctValues(ctx context.Context, field string) ([]string, error)
	DateRange(ctx context.Context) (models.DateRange, error)
	TopNames(ctx context.Context, indicatorType string, limit int) ([]models.Bucket, error)
	DailyCountsBySource(ctx context.Context, f query.Filters) ([]models.DailyCount, error)
	Recent(ctx context.Context, limit int) ([]*models.Indicator, error)
	URLValues(ctx context.Context, f query.Filters) ([]string, error)

	// ReplaceAll deletes every indicator and loads the batch inside a
	// single transaction, so readers see either the old or the new
	// dataset, never a transiently empty table.
	ReplaceAll(ctx context.Context, indicators []*models.Indicator) (int64, error)
	// AppendBatch bulk-inserts without clearing prior state.
	AppendBatch(ctx context.Context, indicators []*models.Indicator) (int64, error)
}

type indicatorRepository struct {
	db  *database.DB
	now func() time.Time
}

// NewIndicatorRepository creates an IndicatorRepository backed by the
// given pool.
func NewIndicatorRepository(db *database.DB) IndicatorRepository {
	return &indicatorRepository{db: db, now: time.Now}
}

var _ IndicatorRepository = (*indicatorRepository)(nil)

const indicatorColumns = `id, indicator_type, indicator_value, name, description, source,
	severity_score, to_char(date_added, 'YYYY-MM-DD'), created_at`

func scanIndicator(row pgx.Row) (*models.Indicator, error) {
	var ind models.Indicator
	err := row.Scan(
		&ind.ID, &ind.IndicatorType, &ind.IndicatorValue, &ind.Name, &ind.Description,
		&ind.Source, &ind.SeverityScore, &ind.DateAdded, &ind.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ind, nil
}

func (r *indicatorRepository) Search(ctx context.Context, f query.Filters, s query.Sort, p query.Page) ([]*models.Indicator, int64, error) {
	total, err := r.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	p = p.Normalize()
	where, args := f.WhereClause(r.now())
	sql := fmt.Sprintf(`SELECT %s FROM indicators %s %s LIMIT %d OFFSET %d`,
		indicatorColumns, where, s.OrderBy(), p.PerPage, p.Offset())

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search indicators: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Indicator, 0)
	for rows.Next() {
		ind, err := scanIndicator(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan indicator: %w", err)
		}
		items = append(items, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating indicators: %w", err)
	}

	return items, total, nil
}

func (r *indicatorRepository) List(ctx context.Context, f query.Filters, s query.Sort) ([]*models.Indicator, error) {
	where, args := f.WhereClause(r.now())
	sql := fmt.Sprintf(`SELECT %s FROM indicators %s %s`, indicatorColumns, where, s.OrderBy())

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list indicators: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Indicator, 0)
	for rows.Next() {
		ind, err := scanIndicator(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan indicator: %w", err)
		}
		items = append(items, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating indicators: %w", err)
	}

	return items, nil
}

func (r *indicatorRepository) Count(ctx context.Context, f query.Filters) (int64, error) {
	where, args := f.WhereClause(r.now())

	var total int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM indicators "+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count indicators: %w", err)
	}
	return total, nil
}

func (r *indicatorRepository) CountBy(ctx context.Context, field string, f query.Filters, order BucketOrder) ([]models.Bucket, error) {
	col, ok := groupableColumns[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		col = "indicator_type"
	}

	// Absent grouping values land in a synthetic Unknown bucket instead
	// of being dropped.
	label := fmt.Sprintf("COALESCE(%s::text, 'Unknown')", col)
	if col == "date_added" {
		label = "to_char(date_added, 'YYYY-MM-DD')"
	}

	orderBy := "ORDER BY 1 ASC"
	if order == OrderByCount {
		orderBy = "ORDER BY 2 DESC, 1 ASC"
	}

	where, args := f.WhereClause(r.now())
	sql := fmt.Sprintf(`SELECT %s, COUNT(*) FROM indicators %s GROUP BY 1 %s`, label, where, orderBy)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count by %s: %w", col, err)
	}
	defer rows.Close()

	buckets := make([]models.Bucket, 0)
	for rows.Next() {
		var b models.Bucket
		if err := rows.Scan(&b.Label, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating buckets: %w", err)
	}

	return buckets, nil
}

func (r *indicatorRepository) DistinctValues(ctx context.Context, field string) ([]string, error) {
	col, ok := groupableColumns[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		col = "source"
	}

	sql := fmt.Sprintf(
		`SELECT DISTINCT %[1]s::text FROM indicators WHERE %[1]s IS NOT NULL AND %[1]s::text <> '' ORDER BY 1`, col)

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", col, err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan distinct value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating distinct values: %w", err)
	}

	return values, nil
}

func (r *indicatorRepository) DateRange(ctx context.Context) (models.DateRange, error) {
	var dr models.DateRange
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(to_char(MIN(date_added), 'YYYY-MM-DD'), ''),
		       COALESCE(to_char(MAX(date_added), 'YYYY-MM-DD'), '')
		FROM indicators`).Scan(&dr.Min, &dr.Max)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("failed to get date range: %w", err)
	}
	return dr, nil
}

func (r *indicatorRepository) TopNames(ctx context.Context, indicatorType string, limit int) ([]models.Bucket, error) {
	if limit <= 0 {
		limit = 10
	}

	sql := fmt.Sprintf(`
		SELECT COALESCE(NULLIF(name, ''), 'Unknown'), COUNT(*)
		FROM indicators
		WHERE indicator_type = $1
		GROUP BY 1
		ORDER BY 2 DESC, MIN(id) ASC
		LIMIT %d`, limit)

	rows, err := r.db.Query(ctx, sql, indicatorType)
	if err != nil {
		return nil, fmt.Errorf("failed to get top names: %w", err)
	}
	defer rows.Close()

	buckets := make([]models.Bucket, 0)
	for rows.Next() {
		var b models.Bucket
		if err := rows.Scan(&b.Label, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan top name: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top names: %w", err)
	}

	return buckets, nil
}

func (r *indicatorRepository) DailyCountsBySource(ctx context.Context, f query.Filters) ([]models.DailyCount, error) {
	where, args := f.WhereClause(r.now())
	sql := fmt.Sprintf(`
		SELECT to_char(date_added, 'YYYY-MM-DD'), COALESCE(NULLIF(source, ''), 'Unknown'), COUNT(*)
		FROM indicators %s
		GROUP BY 1, 2
		ORDER BY 1 ASC, 2 ASC`, where)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily counts: %w", err)
	}
	defer rows.Close()

	counts := make([]models.DailyCount, 0)
	for rows.Next() {
		var dc models.DailyCount
		if err := rows.Scan(&dc.Day, &dc.Source, &dc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily count: %w", err)
		}
		counts = append(counts, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily counts: %w", err)
	}

	return counts, nil
}

func (r *indicatorRepository) Recent(ctx context.Context, limit int) ([]*models.Indicator, error) {
	if limit <= 0 {
		limit = 10
	}

	sql := fmt.Sprintf(`SELECT %s FROM indicators ORDER BY created_at DESC, id DESC LIMIT %d`,
		indicatorColumns, limit)

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent indicators: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Indicator, 0)
	for rows.Next() {
		ind, err := scanIndicator(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan indicator: %w", err)
		}
		items = append(items, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent indicators: %w", err)
	}

	return items, nil
}

func (r *indicatorRepository) URLValues(ctx context.Context, f query.Filters) ([]string, error) {
	frag, args, argIndex := f.Where(1, r.now())
	sql := "SELECT indicator_value FROM indicators WHERE indicator_type = " + fmt.Sprintf("$%d", argIndex)
	if frag != "" {
		sql += " AND " + frag
	}
	args = append(args, models.TypeMaliciousURL)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list URL values: %w", err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan URL value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating URL values: %w", err)
	}

	return values, nil
}

func (r *indicatorRepository) ReplaceAll(ctx context.Context, indicators []*models.Indicator) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM indicators"); err != nil {
		return 0, fmt.Errorf("failed to clear indicators: %w", err)
	}

	inserted, err := copyIndicators(ctx, tx, indicators)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit reload: %w", err)
	}

	return inserted, nil
}

func (r *indicatorRepository) AppendBatch(ctx context.Context, indicators []*models.Indicator) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted, err := copyIndicators(ctx, tx, indicators)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	return inserted, nil
}

func copyIndicators(ctx context.Context, tx pgx.Tx, indicators []*models.Indicator) (int64, error) {
	if len(indicators) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(indicators))
	for _, ind := range indicators {
		dateAdded, err := time.Parse("2006-01-02", ind.DateAdded)
		if err != nil {
			return 0, fmt.Errorf("invalid date_added %q for %s: %w", ind.DateAdded, ind.IndicatorValue, err)
		}
		createdAt := ind.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		rows = append(rows, []any{
			ind.IndicatorType, ind.IndicatorValue, ind.Name, ind.Description,
			ind.Source, ind.SeverityScore, dateAdded, createdAt,
		})
	}

	inserted, err := tx.CopyFrom(ctx,
		pgx.Identifier{"indicators"},
		[]string{"indicator_type", "indicator_value", "name", "description", "source", "severity_score", "date_added", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk insert indicators: %w", err)
	}

	return inserted, nil
}
