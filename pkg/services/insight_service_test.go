package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/apperrors"
	"github.com/harmonia-ir/intel-engine/pkg/llm"
	"github.com/harmonia-ir/intel-engine/pkg/models"
)

func TestInsightServiceAsk(t *testing.T) {
	recent := []*models.Indicator{
		{Name: "CVE-2025-0001", Description: "Remote code execution in widget server"},
		{Name: "T1566", Description: "Phishing technique"},
	}

	t.Run("answers and records the exchange", func(t *testing.T) {
		indicators := &mockIndicatorRepo{recentItems: recent}
		queries := &mockUserQueryRepo{}
		client := &llm.MockClient{Answer: "Patch the widget server first."}
		svc := NewInsightService(indicators, queries, client, zap.NewNop())

		uq, err := svc.Ask(context.Background(), "What should we prioritize?")
		require.NoError(t, err)

		assert.Equal(t, "What should we prioritize?", uq.Question)
		assert.Equal(t, "Patch the widget server first.", uq.Answer)
		assert.Equal(t, 1, client.Calls)
		assert.Contains(t, client.LastContext, "CVE-2025-0001: Remote code execution in widget server")
		assert.Contains(t, client.LastContext, "T1566: Phishing technique")

		require.Len(t, queries.created, 1)
		assert.Equal(t, uq.Answer, queries.created[0].Answer)
	})

	t.Run("audit failure still returns the answer", func(t *testing.T) {
		indicators := &mockIndicatorRepo{recentItems: recent}
		queries := &mockUserQueryRepo{createErr: errors.New("insert failed")}
		client := &llm.MockClient{Answer: "ok"}
		svc := NewInsightService(indicators, queries, client, zap.NewNop())

		uq, err := svc.Ask(context.Background(), "anything?")
		require.NoError(t, err)
		assert.Equal(t, "ok", uq.Answer)
	})

	t.Run("blank question rejected", func(t *testing.T) {
		svc := NewInsightService(&mockIndicatorRepo{}, &mockUserQueryRepo{}, &llm.MockClient{}, zap.NewNop())

		_, err := svc.Ask(context.Background(), "   ")
		assert.Error(t, err)
	})

	t.Run("no configured client", func(t *testing.T) {
		svc := NewInsightService(&mockIndicatorRepo{}, &mockUserQueryRepo{}, nil, zap.NewNop())

		_, err := svc.Ask(context.Background(), "anything?")
		assert.ErrorIs(t, err, apperrors.ErrNoInsightClient)
	})

	t.Run("provider error propagates unrecorded", func(t *testing.T) {
		queries := &mockUserQueryRepo{}
		client := &llm.MockClient{Err: errors.New("rate limited")}
		svc := NewInsightService(&mockIndicatorRepo{recentItems: recent}, queries, client, zap.NewNop())

		_, err := svc.Ask(context.Background(), "anything?")
		assert.Error(t, err)
		assert.Empty(t, queries.created)
	})
}

func TestInsightServiceHistory(t *testing.T) {
	queries := &mockUserQueryRepo{recent: []*models.UserQuery{{ID: 2}, {ID: 1}}}
	svc := NewInsightService(&mockIndicatorRepo{}, queries, &llm.MockClient{}, zap.NewNop())

	history, err := svc.History(context.Background())
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
