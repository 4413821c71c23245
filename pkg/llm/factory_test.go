package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewInsightClientDefaultsModelPerProvider(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		wantModel string
	}{
		{"openai", ProviderOpenAI, defaultOpenAIModel},
		{"blank provider falls back to openai", "", defaultOpenAIModel},
		{"anthropic", ProviderAnthropic, defaultAnthropicModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewInsightClient(&ProviderConfig{
				Provider: tt.provider,
				APIKey:   "test-key",
			}, zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, client.Model())
		})
	}
}

func TestNewInsightClientExplicitModelWins(t *testing.T) {
	client, err := NewInsightClient(&ProviderConfig{
		Provider: ProviderOpenAI,
		APIKey:   "test-key",
		Model:    "gpt-4o-mini",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", client.Model())
}

func TestNewInsightClientUnknownProvider(t *testing.T) {
	_, err := NewInsightClient(&ProviderConfig{
		Provider: "bedrock",
		APIKey:   "test-key",
	}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown insight provider")
}
