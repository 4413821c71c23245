package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// Supported insight providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Per-provider default models, used when AI_MODEL is unset.
const (
	defaultOpenAIModel    = "gpt-4o"
	defaultAnthropicModel = "claude-sonnet-4-20250514"
)

// ProviderConfig selects and configures an insight provider.
type ProviderConfig struct {
	Provider string // "openai" or "anthropic"
	APIKey   string
	Model    string
	Endpoint string // OpenAI-compatible base URL override; ignored by anthropic
}

// NewInsightClient creates the configured provider's client.
func NewInsightClient(cfg *ProviderConfig, logger *zap.Logger) (InsightClient, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return NewOpenAIClient(&OpenAIConfig{
			APIKey:   cfg.APIKey,
			Model:    model,
			Endpoint: cfg.Endpoint,
		}, logger)
	case ProviderAnthropic:
		model := cfg.Model
		if model == "" {
			model = defaultAnthropicModel
		}
		return NewAnthropicClient(&AnthropicConfig{
			APIKey: cfg.APIKey,
			Model:  model,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown insight provider %q", cfg.Provider)
	}
}
