package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/harmonia-ir/intel-engine/pkg/apperrors"
	"github.com/harmonia-ir/intel-engine/pkg/feeds"
	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/query"
	"github.com/harmonia-ir/intel-engine/pkg/repositories"
)

type mockIndicatorRepo struct {
	searchItems []*models.Indicator
	searchTotal int64
	searchErr   error
	lastFilters query.Filters
	lastSort    query.Sort
	lastPage    query.Page

	listItems []*models.Indicator
	listErr   error

	countFn  func(f query.Filters) (int64, error)
	countErr error

	countByFn  func(field string, f query.Filters, order repositories.BucketOrder) ([]models.Bucket, error)
	countByErr error

	distinct    map[string][]string
	distinctErr error

	dateRange models.DateRange

	topNames    []models.Bucket
	topNamesErr error

	dailyCounts    []models.DailyCount
	dailyCountsErr error

	recentItems []*models.Indicator
	recentErr   error

	urlValues    []string
	urlValuesErr error

	replaced    []*models.Indicator
	replaceErr  error
	appended    []*models.Indicator
	appendErr   error
	replaceRuns int
}

var _ repositories.IndicatorRepository = (*mockIndicatorRepo)(nil)

func (m *mockIndicatorRepo) Search(_ context.Context, f query.Filters, s query.Sort, p query.Page) ([]*models.Indicator, int64, error) {
	m.lastFilters, m.lastSort, m.lastPage = f, s, p
	return m.searchItems, m.searchTotal, m.searchErr
}

func (m *mockIndicatorRepo) List(_ context.Context, f query.Filters, s query.Sort) ([]*models.Indicator, error) {
	m.lastFilters, m.lastSort = f, s
	return m.listItems, m.listErr
}

func (m *mockIndicatorRepo) Count(_ context.Context, f query.Filters) (int64, error) {
	if m.countFn != nil {
		return m.countFn(f)
	}
	return 0, m.countErr
}

func (m *mockIndicatorRepo) CountBy(_ context.Context, field string, f query.Filters, order repositories.BucketOrder) ([]models.Bucket, error) {
	if m.countByFn != nil {
		return m.countByFn(field, f, order)
	}
	return nil, m.countByErr
}

func (m *mockIndicatorRepo) DistinctValues(_ context.Context, field string) ([]string, error) {
	if m.distinctErr != nil {
		return nil, m.distinctErr
	}
	return m.distinct[field], nil
}

func (m *mockIndicatorRepo) DateRange(_ context.Context) (models.DateRange, error) {
	return m.dateRange, nil
}

func (m *mockIndicatorRepo) TopNames(_ context.Context, _ string, _ int) ([]models.Bucket, error) {
	return m.topNames, m.topNamesErr
}

func (m *mockIndicatorRepo) DailyCountsBySource(_ context.Context, f query.Filters) ([]models.DailyCount, error) {
	m.lastFilters = f
	return m.dailyCounts, m.dailyCountsErr
}

func (m *mockIndicatorRepo) Recent(_ context.Context, _ int) ([]*models.Indicator, error) {
	return m.recentItems, m.recentErr
}

func (m *mockIndicatorRepo) URLValues(_ context.Context, f query.Filters) ([]string, error) {
	m.lastFilters = f
	return m.urlValues, m.urlValuesErr
}

func (m *mockIndicatorRepo) ReplaceAll(_ context.Context, indicators []*models.Indicator) (int64, error) {
	m.replaceRuns++
	if m.replaceErr != nil {
		return 0, m.replaceErr
	}
	m.replaced = indicators
	return int64(len(indicators)), nil
}

func (m *mockIndicatorRepo) AppendBatch(_ context.Context, indicators []*models.Indicator) (int64, error) {
	if m.appendErr != nil {
		return 0, m.appendErr
	}
	m.appended = indicators
	return int64(len(indicators)), nil
}

type mockExportRepo struct {
	created   []*models.Export
	createErr error
	recent    []*models.Export
	listErr   error
	lastLimit int
}

var _ repositories.ExportRepository = (*mockExportRepo)(nil)

func (m *mockExportRepo) Create(_ context.Context, exp *models.Export) error {
	if m.createErr != nil {
		return m.createErr
	}
	exp.ID = int64(len(m.created) + 1)
	m.created = append(m.created, exp)
	return nil
}

func (m *mockExportRepo) ListRecent(_ context.Context, limit int) ([]*models.Export, error) {
	m.lastLimit = limit
	return m.recent, m.listErr
}

type mockUserQueryRepo struct {
	created   []*models.UserQuery
	createErr error
	recent    []*models.UserQuery
	listErr   error
}

var _ repositories.UserQueryRepository = (*mockUserQueryRepo)(nil)

func (m *mockUserQueryRepo) Create(_ context.Context, uq *models.UserQuery) error {
	if m.createErr != nil {
		return m.createErr
	}
	uq.ID = int64(len(m.created) + 1)
	m.created = append(m.created, uq)
	return nil
}

func (m *mockUserQueryRepo) ListRecent(_ context.Context, _ int) ([]*models.UserQuery, error) {
	return m.recent, m.listErr
}

type mockDataUpdateRepo struct {
	updates   map[uuid.UUID]*models.DataUpdate
	createErr error
	finishErr error
}

var _ repositories.DataUpdateRepository = (*mockDataUpdateRepo)(nil)

func newMockDataUpdateRepo() *mockDataUpdateRepo {
	return &mockDataUpdateRepo{updates: make(map[uuid.UUID]*models.DataUpdate)}
}

func (m *mockDataUpdateRepo) Create(_ context.Context, upd *models.DataUpdate) error {
	if m.createErr != nil {
		return m.createErr
	}
	if upd.ID == uuid.Nil {
		upd.ID = uuid.New()
	}
	upd.Status = models.UpdateStatusInProgress
	upd.StartedAt = time.Now()
	stored := *upd
	m.updates[upd.ID] = &stored
	return nil
}

func (m *mockDataUpdateRepo) Finish(_ context.Context, id uuid.UUID, status string, records int, errorMessage string, details map[string]any) error {
	if m.finishErr != nil {
		return m.finishErr
	}
	upd, ok := m.updates[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if upd.Finalized() {
		return apperrors.ErrUpdateFinalized
	}
	now := time.Now()
	upd.Status = status
	upd.CompletedAt = &now
	upd.RecordsProcessed = records
	upd.ErrorMessage = errorMessage
	upd.Details = details
	return nil
}

func (m *mockDataUpdateRepo) GetByID(_ context.Context, id uuid.UUID) (*models.DataUpdate, error) {
	upd, ok := m.updates[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *upd
	return &copied, nil
}

func (m *mockDataUpdateRepo) ListRecent(_ context.Context, _ int) ([]*models.DataUpdate, error) {
	out := make([]*models.DataUpdate, 0, len(m.updates))
	for _, upd := range m.updates {
		copied := *upd
		out = append(out, &copied)
	}
	return out, nil
}

type mockFetcher struct {
	name  string
	items []*models.Indicator
	err   error
}

var _ feeds.Fetcher = (*mockFetcher)(nil)

func (m *mockFetcher) Name() string { return m.name }

func (m *mockFetcher) Fetch(_ context.Context, _ int) ([]*models.Indicator, error) {
	return m.items, m.err
}

func severityOf(score float64) *float64 {
	return &score
}
