package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/analytics"
	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/query"
	"github.com/harmonia-ir/intel-engine/pkg/repositories"
)

const peakCount = 3

// AnalyticsService computes the temporal, trend and geographic views.
// Empty windows are valid inputs and yield empty results, never errors.
type AnalyticsService interface {
	// Temporal returns day-aligned per-source series over the trailing
	// window. sourceFilter is a comma-separated list of case-insensitive
	// substring matches; blank means all sources. days <= 0 yields an
	// empty analysis.
	Temporal(ctx context.Context, days int, sourceFilter string) (*models.TemporalAnalysis, error)
	Trends(ctx context.Context, days int) (*models.ThreatTrends, error)
	Geographic(ctx context.Context, days int, severityBand string, sources []string) (*models.GeographicAnalysis, error)
}

type analyticsService struct {
	repo   repositories.IndicatorRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(repo repositories.IndicatorRepository, logger *zap.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		now:    time.Now,
		logger: logger.Named("analytics-service"),
	}
}

var _ AnalyticsService = (*analyticsService)(nil)

func (s *analyticsService) Temporal(ctx context.Context, days int, sourceFilter string) (*models.TemporalAnalysis, error) {
	if days <= 0 {
		return &models.TemporalAnalysis{
			Dates:   []string{},
			Series:  map[string][]int64{},
			Total:   []int64{},
			Sources: []string{},
		}, nil
	}

	f := query.Filters{
		Days:    days,
		Sources: query.ParseSourceList(sourceFilter),
	}
	rows, err := s.repo.DailyCountsBySource(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("get daily counts: %w", err)
	}

	to := s.now()
	from := to.AddDate(0, 0, -days)
	return analytics.BuildSeries(rows, from, to), nil
}

func (s *analyticsService) Trends(ctx context.Context, days int) (*models.ThreatTrends, error) {
	ta, err := s.Temporal(ctx, days, "")
	if err != nil {
		return nil, err
	}

	return &models.ThreatTrends{
		PeakDates:      analytics.Peaks(ta.Dates, ta.Total, peakCount),
		AverageDaily:   analytics.AverageDaily(ta.Total),
		TrendDirection: analytics.TrendDirection(ta.Total),
		WeeklyPattern:  analytics.WeeklyPattern(ta.Dates, ta.Total),
		TemporalData:   ta,
	}, nil
}

func (s *analyticsService) Geographic(ctx context.Context, days int, severityBand string, sources []string) (*models.GeographicAnalysis, error) {
	f := query.Filters{
		Days:         days,
		SeverityBand: severityBand,
		Sources:      sources,
	}

	urls, err := s.repo.URLValues(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("get URL indicators: %w", err)
	}

	var cveCount, techniqueCount int64
	typeCounts, err := s.repo.CountBy(ctx, "indicator_type", f, repositories.OrderByLabel)
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	for _, b := range typeCounts {
		switch b.Label {
		case models.TypeCVEVulnerability:
			cveCount = b.Count
		case models.TypeMITRETechnique:
			techniqueCount = b.Count
		}
	}

	stats := analytics.Geographic(urls, cveCount, techniqueCount)
	return analytics.Columns(stats), nil
}
