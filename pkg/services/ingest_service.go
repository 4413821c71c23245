package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/feeds"
	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/repositories"
)

// Ingestion modes.
const (
	ModeReplace = "replace"
	ModeAppend  = "append"
)

const ingestHistoryLimit = 20

// IngestService runs feed ingestion and tracks each run as a
// DataUpdate audit record.
type IngestService interface {
	// Run fetches every configured feed and loads the results. In
	// replace mode the indicator table is swapped transactionally; in
	// append mode the batch is added to the existing rows. The returned
	// update is the finalized audit record.
	Run(ctx context.Context, mode string) (*models.DataUpdate, error)
	History(ctx context.Context) ([]*models.DataUpdate, error)
}

type ingestService struct {
	indicators repositories.IndicatorRepository
	updates    repositories.DataUpdateRepository
	fetchers   []feeds.Fetcher
	logger     *zap.Logger
}

// NewIngestService creates a new IngestService over the given fetchers.
func NewIngestService(indicators repositories.IndicatorRepository, updates repositories.DataUpdateRepository, fetchers []feeds.Fetcher, logger *zap.Logger) IngestService {
	return &ingestService{
		indicators: indicators,
		updates:    updates,
		fetchers:   fetchers,
		logger:     logger.Named("ingest-service"),
	}
}

var _ IngestService = (*ingestService)(nil)

func (s *ingestService) Run(ctx context.Context, mode string) (*models.DataUpdate, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = ModeReplace
	}
	if mode != ModeReplace && mode != ModeAppend {
		return nil, fmt.Errorf("unknown ingestion mode %q", mode)
	}

	upd := &models.DataUpdate{UpdateType: mode}
	if err := s.updates.Create(ctx, upd); err != nil {
		return nil, fmt.Errorf("start data update: %w", err)
	}
	s.logger.Info("ingestion started",
		zap.String("update_id", upd.ID.String()),
		zap.String("mode", mode))

	var batch []*models.Indicator
	details := make(map[string]any, len(s.fetchers))
	var feedErrors []string
	for _, fetcher := range s.fetchers {
		items, err := fetcher.Fetch(ctx, 0)
		if err != nil {
			s.logger.Warn("feed fetch failed",
				zap.String("feed", fetcher.Name()),
				zap.Error(err))
			feedErrors = append(feedErrors, fmt.Sprintf("%s: %v", fetcher.Name(), err))
			details[fetcher.Name()] = map[string]any{"error": err.Error()}
			continue
		}
		batch = append(batch, items...)
		details[fetcher.Name()] = map[string]any{"count": len(items)}
	}

	// A run with no usable data at all fails; partial feed outages
	// still load what arrived.
	if len(batch) == 0 {
		msg := "no indicators fetched"
		if len(feedErrors) > 0 {
			msg = strings.Join(feedErrors, "; ")
		}
		return s.finish(ctx, upd, models.UpdateStatusFailed, 0, msg, details)
	}

	var inserted int64
	var err error
	if mode == ModeReplace {
		inserted, err = s.indicators.ReplaceAll(ctx, batch)
	} else {
		inserted, err = s.indicators.AppendBatch(ctx, batch)
	}
	if err != nil {
		s.logger.Error("ingestion load failed",
			zap.String("update_id", upd.ID.String()),
			zap.Error(err))
		return s.finish(ctx, upd, models.UpdateStatusFailed, 0, err.Error(), details)
	}

	errorMessage := strings.Join(feedErrors, "; ")
	s.logger.Info("ingestion finished",
		zap.String("update_id", upd.ID.String()),
		zap.Int64("records", inserted),
		zap.Int("failed_feeds", len(feedErrors)))
	return s.finish(ctx, upd, models.UpdateStatusSuccess, int(inserted), errorMessage, details)
}

func (s *ingestService) finish(ctx context.Context, upd *models.DataUpdate, status string, records int, errorMessage string, details map[string]any) (*models.DataUpdate, error) {
	if err := s.updates.Finish(ctx, upd.ID, status, records, errorMessage, details); err != nil {
		return nil, fmt.Errorf("finish data update: %w", err)
	}

	final, err := s.updates.GetByID(ctx, upd.ID)
	if err != nil {
		return nil, fmt.Errorf("reload data update: %w", err)
	}

	if final.Status == models.UpdateStatusFailed {
		return final, fmt.Errorf("ingestion failed: %s", final.ErrorMessage)
	}
	return final, nil
}

func (s *ingestService) History(ctx context.Context) ([]*models.DataUpdate, error) {
	updates, err := s.updates.ListRecent(ctx, ingestHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list data updates: %w", err)
	}
	return updates, nil
}
