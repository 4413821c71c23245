package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/query"
	"github.com/harmonia-ir/intel-engine/pkg/repositories"
)

const (
	recentWindowDays  = 7
	topTechniqueCount = 5
)

// DashboardService computes the aggregate views behind the main
// dashboard and its filtered variant.
type DashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
	// FilteredStats recomputes the dashboard under a trailing-day
	// window, a severity band and a source list. Zero days means no
	// window; an empty source list falls back to the configured
	// default sources.
	FilteredStats(ctx context.Context, days int, severityBand string, sources []string) (*models.DashboardStats, error)
}

type dashboardService struct {
	repo           repositories.IndicatorRepository
	defaultSources []string
	logger         *zap.Logger
}

// NewDashboardService creates a new DashboardService. defaultSources is
// the source list applied when a filtered request names none.
func NewDashboardService(repo repositories.IndicatorRepository, defaultSources []string, logger *zap.Logger) DashboardService {
	return &dashboardService{
		repo:           repo,
		defaultSources: defaultSources,
		logger:         logger.Named("dashboard-service"),
	}
}

var _ DashboardService = (*dashboardService)(nil)

func (s *dashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	return s.build(ctx, query.Filters{})
}

func (s *dashboardService) FilteredStats(ctx context.Context, days int, severityBand string, sources []string) (*models.DashboardStats, error) {
	if len(sources) == 0 {
		sources = s.defaultSources
	}
	return s.build(ctx, query.Filters{
		Days:         days,
		SeverityBand: severityBand,
		Sources:      sources,
	})
}

func (s *dashboardService) build(ctx context.Context, f query.Filters) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count indicators: %w", err)
	}
	stats.TotalIndicators = total

	typeCounts, err := s.repo.CountBy(ctx, "indicator_type", f, repositories.OrderByLabel)
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	for _, b := range typeCounts {
		switch b.Label {
		case models.TypeMITRETechnique:
			stats.MITRECount = b.Count
		case models.TypeCVEVulnerability:
			stats.CVECount = b.Count
		case models.TypeMaliciousURL:
			stats.URLHausCount = b.Count
		}
	}

	recentFilter := f
	recentFilter.Days = recentWindowDays
	recent, err := s.repo.Count(ctx, recentFilter)
	if err != nil {
		return nil, fmt.Errorf("count recent indicators: %w", err)
	}
	stats.RecentCount = recent

	stats.SeverityDistribution, err = s.repo.CountBy(ctx, "severity_score", f, repositories.OrderByLabel)
	if err != nil {
		return nil, fmt.Errorf("count by severity: %w", err)
	}

	stats.SourceDistribution, err = s.repo.CountBy(ctx, "source", f, repositories.OrderByLabel)
	if err != nil {
		return nil, fmt.Errorf("count by source: %w", err)
	}

	stats.RecentTrend, err = s.repo.CountBy(ctx, "date_added", recentFilter, repositories.OrderByLabel)
	if err != nil {
		return nil, fmt.Errorf("count recent trend: %w", err)
	}

	stats.TopTechniques, err = s.repo.TopNames(ctx, models.TypeMITRETechnique, topTechniqueCount)
	if err != nil {
		return nil, fmt.Errorf("get top techniques: %w", err)
	}

	stats.SourceBreakdown, err = s.repo.CountBy(ctx, "source", f, repositories.OrderByCount)
	if err != nil {
		return nil, fmt.Errorf("count source breakdown: %w", err)
	}

	return stats, nil
}
