package handlers

import (
	"context"

	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/query"
	"github.com/harmonia-ir/intel-engine/pkg/services"
)

type mockIndicatorService struct {
	result    *models.PagedIndicators
	options   *models.FilterOptions
	err       error
	lastReq   services.SearchRequest
	callCount int
}

var _ services.IndicatorService = (*mockIndicatorService)(nil)

func (m *mockIndicatorService) Search(_ context.Context, req services.SearchRequest) (*models.PagedIndicators, error) {
	m.lastReq = req
	m.callCount++
	return m.result, m.err
}

func (m *mockIndicatorService) FilterOptions(_ context.Context) (*models.FilterOptions, error) {
	return m.options, m.err
}

type mockDashboardService struct {
	stats       *models.DashboardStats
	err         error
	lastDays    int
	lastBand    string
	lastSources []string
}

var _ services.DashboardService = (*mockDashboardService)(nil)

func (m *mockDashboardService) Stats(context.Context) (*models.DashboardStats, error) {
	return m.stats, m.err
}

func (m *mockDashboardService) FilteredStats(_ context.Context, days int, band string, sources []string) (*models.DashboardStats, error) {
	m.lastDays, m.lastBand, m.lastSources = days, band, sources
	return m.stats, m.err
}

type mockAnalyticsService struct {
	temporal   *models.TemporalAnalysis
	trends     *models.ThreatTrends
	geographic *models.GeographicAnalysis
	err        error
	lastDays   int
	lastSource string
}

var _ services.AnalyticsService = (*mockAnalyticsService)(nil)

func (m *mockAnalyticsService) Temporal(_ context.Context, days int, source string) (*models.TemporalAnalysis, error) {
	m.lastDays, m.lastSource = days, source
	return m.temporal, m.err
}

func (m *mockAnalyticsService) Trends(_ context.Context, days int) (*models.ThreatTrends, error) {
	m.lastDays = days
	return m.trends, m.err
}

func (m *mockAnalyticsService) Geographic(_ context.Context, days int, _ string, _ []string) (*models.GeographicAnalysis, error) {
	m.lastDays = days
	return m.geographic, m.err
}

type mockInsightService struct {
	answer       *models.UserQuery
	history      []*models.UserQuery
	err          error
	lastQuestion string
}

var _ services.InsightService = (*mockInsightService)(nil)

func (m *mockInsightService) Ask(_ context.Context, question string) (*models.UserQuery, error) {
	m.lastQuestion = question
	return m.answer, m.err
}

func (m *mockInsightService) History(context.Context) ([]*models.UserQuery, error) {
	return m.history, m.err
}

type mockExportService struct {
	export     *models.Export
	audited    bool
	history    []*models.Export
	err        error
	lastFormat string
	lastDays   int
}

var _ services.ExportService = (*mockExportService)(nil)

func (m *mockExportService) RecordExport(context.Context, *models.Export) bool { return m.audited }

func (m *mockExportService) History(context.Context) ([]*models.Export, error) {
	return m.history, m.err
}

func (m *mockExportService) ExportData(_ context.Context, format string, days int, _ query.Filters) (*models.Export, bool, error) {
	m.lastFormat, m.lastDays = format, days
	return m.export, m.audited, m.err
}

type mockIngestService struct {
	update   *models.DataUpdate
	history  []*models.DataUpdate
	err      error
	lastMode string
}

var _ services.IngestService = (*mockIngestService)(nil)

func (m *mockIngestService) Run(_ context.Context, mode string) (*models.DataUpdate, error) {
	m.lastMode = mode
	return m.update, m.err
}

func (m *mockIngestService) History(context.Context) ([]*models.DataUpdate, error) {
	return m.history, m.err
}
