package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicClient answers insight questions through the Anthropic
// Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// AnthropicConfig holds configuration for creating an Anthropic client.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// NewAnthropicClient creates a new Anthropic-backed insight client.
func NewAnthropicClient(cfg *AnthropicConfig, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	return &AnthropicClient{
		client: anthropic.NewClient(cfg.APIKey),
		model:  cfg.Model,
		logger: logger.Named("anthropic"),
	}, nil
}

var _ InsightClient = (*AnthropicClient)(nil)

// Ask sends the analyst prompt and returns the model's answer.
func (c *AnthropicClient) Ask(ctx context.Context, question, dataContext string) (string, error) {
	start := time.Now()
	temperature := float32(0.3)

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		MaxTokens:   500,
		System:      systemPrompt,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(buildPrompt(question, dataContext)),
		},
	})
	if err != nil {
		c.logger.Error("Messages request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("create messages: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			c.logger.Debug("Messages request finished",
				zap.Duration("elapsed", time.Since(start)))
			return strings.TrimSpace(*block.Text), nil
		}
	}

	return "", fmt.Errorf("no text content in response")
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.model
}
