package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/apperrors"
	"github.com/harmonia-ir/intel-engine/pkg/llm"
	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/repositories"
)

const (
	insightContextSize  = 10
	insightHistoryLimit = 20
)

// InsightService answers free-text analyst questions against the
// current indicator set and keeps the question/answer audit trail.
type InsightService interface {
	// Ask answers the question using recent indicators as context and
	// persists the exchange. A persist failure is logged but the answer
	// is still returned.
	Ask(ctx context.Context, question string) (*models.UserQuery, error)
	History(ctx context.Context) ([]*models.UserQuery, error)
}

type insightService struct {
	indicators repositories.IndicatorRepository
	queries    repositories.UserQueryRepository
	client     llm.InsightClient
	logger     *zap.Logger
}

// NewInsightService creates a new InsightService. client may be nil
// when no provider is configured; Ask then fails with
// apperrors.ErrNoInsightClient.
func NewInsightService(indicators repositories.IndicatorRepository, queries repositories.UserQueryRepository, client llm.InsightClient, logger *zap.Logger) InsightService {
	return &insightService{
		indicators: indicators,
		queries:    queries,
		client:     client,
		logger:     logger.Named("insight-service"),
	}
}

var _ InsightService = (*insightService)(nil)

func (s *insightService) Ask(ctx context.Context, question string) (*models.UserQuery, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}
	if s.client == nil {
		return nil, apperrors.ErrNoInsightClient
	}

	recent, err := s.indicators.Recent(ctx, insightContextSize)
	if err != nil {
		return nil, fmt.Errorf("load context indicators: %w", err)
	}

	answer, err := s.client.Ask(ctx, question, contextLines(recent))
	if err != nil {
		return nil, fmt.Errorf("ask insight provider: %w", err)
	}

	uq := &models.UserQuery{Question: question, Answer: answer}
	if err := s.queries.Create(ctx, uq); err != nil {
		s.logger.Error("failed to record insight query", zap.Error(err))
	}

	return uq, nil
}

func (s *insightService) History(ctx context.Context) ([]*models.UserQuery, error) {
	queries, err := s.queries.ListRecent(ctx, insightHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list insight history: %w", err)
	}
	return queries, nil
}

func contextLines(indicators []*models.Indicator) string {
	lines := make([]string, 0, len(indicators))
	for _, ind := range indicators {
		lines = append(lines, ind.Name+": "+ind.Description)
	}
	return strings.Join(lines, "\n")
}
