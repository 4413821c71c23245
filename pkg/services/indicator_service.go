package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/query"
	"github.com/harmonia-ir/intel-engine/pkg/repositories"
)

// SearchRequest carries the raw, loosely-typed search parameters as
// they arrive from the API. Blank fields impose no constraint and
// malformed numeric fields degrade to "filter not applied".
type SearchRequest struct {
	SearchTerm    string
	IndicatorType string
	SeverityMin   string
	SeverityMax   string
	DateFrom      string
	DateTo        string
	Source        string
	SortBy        string
	SortOrder     string
	Page          int
	PerPage       int
}

// Filters converts the request's filter fields to a typed filter set.
func (r SearchRequest) Filters() query.Filters {
	return query.Filters{
		SearchTerm:    r.SearchTerm,
		IndicatorType: r.IndicatorType,
		SeverityMin:   query.ParseFloat(r.SeverityMin),
		SeverityMax:   query.ParseFloat(r.SeverityMax),
		DateFrom:      r.DateFrom,
		DateTo:        r.DateTo,
		Source:        r.Source,
	}
}

// IndicatorService provides indicator search and the filter-option
// metadata behind the search UI.
type IndicatorService interface {
	Search(ctx context.Context, req SearchRequest) (*models.PagedIndicators, error)
	FilterOptions(ctx context.Context) (*models.FilterOptions, error)
}

type indicatorService struct {
	repo   repositories.IndicatorRepository
	logger *zap.Logger
}

// NewIndicatorService creates a new IndicatorService.
func NewIndicatorService(repo repositories.IndicatorRepository, logger *zap.Logger) IndicatorService {
	return &indicatorService{
		repo:   repo,
		logger: logger.Named("indicator-service"),
	}
}

var _ IndicatorService = (*indicatorService)(nil)

func (s *indicatorService) Search(ctx context.Context, req SearchRequest) (*models.PagedIndicators, error) {
	sort := query.Sort{Field: req.SortBy, Order: req.SortOrder}
	page := query.Page{Number: req.Page, PerPage: req.PerPage}.Normalize()

	items, total, err := s.repo.Search(ctx, req.Filters(), sort, page)
	if err != nil {
		return nil, fmt.Errorf("search indicators: %w", err)
	}

	meta := query.MetaFor(total, page)
	return &models.PagedIndicators{
		Items:       items,
		Total:       total,
		Pages:       meta.Pages,
		CurrentPage: page.Number,
		PerPage:     page.PerPage,
		HasPrev:     meta.HasPrev,
		HasNext:     meta.HasNext,
		PrevPage:    meta.PrevPage,
		NextPage:    meta.NextPage,
	}, nil
}

func (s *indicatorService) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	sources, err := s.repo.DistinctValues(ctx, "source")
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	severities, err := s.repo.DistinctValues(ctx, "severity_score")
	if err != nil {
		return nil, fmt.Errorf("list severities: %w", err)
	}

	dateRange, err := s.repo.DateRange(ctx)
	if err != nil {
		return nil, fmt.Errorf("get date range: %w", err)
	}

	return &models.FilterOptions{
		Sources:    sources,
		Severities: severities,
		DateRange:  dateRange,
	}, nil
}
