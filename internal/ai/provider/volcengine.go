package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"

	"promptforge/internal/config"
)

// VolcengineClient 直接使用 volcengine-go-sdk 调用火山方舟 (Ark) 对话接口
type VolcengineClient struct {
	client  *arkruntime.Client
	model   string
	timeout time.Duration
	options config.AIOptionsConfig
}

// NewVolcengineClient 创建火山方舟客户端
func NewVolcengineClient(cfg *config.AIConfig) (*VolcengineClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ark api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultArkBaseURL
	}

	return &VolcengineClient{
		client:  arkruntime.NewClientWithApiKey(cfg.APIKey, arkruntime.WithBaseUrl(baseURL)),
		model:   ModelOf(cfg),
		timeout: timeoutOf(cfg),
		options: cfg.Options,
	}, nil
}

// Generate 实现 Generator，取第一个 choice 的文本
func (c *VolcengineClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	input := &model.ChatCompletionRequest{
		Model: c.model,
		Messages: []*model.ChatCompletionMessage{
			{
				Role:    "user",
				Content: &model.ChatCompletionMessageContent{StringValue: &prompt},
			},
		},
	}
	if c.options.MaxTokens > 0 {
		input.MaxTokens = c.options.MaxTokens
	}
	if c.options.Temperature > 0 {
		input.Temperature = float32(c.options.Temperature)
	}
	if c.options.TopP > 0 {
		input.TopP = float32(c.options.TopP)
	}

	output, err := c.client.CreateChatCompletion(ctx, input)
	if err != nil {
		log.Error().Err(err).Str("model", c.model).Msg("failed to call Ark ChatCompletion API")
		return "", fmt.Errorf("ark api call failed: %w", err)
	}

	if len(output.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	msg := output.Choices[0].Message
	if msg.Content == nil || msg.Content.StringValue == nil || *msg.Content.StringValue == "" {
		return "", ErrEmptyResponse
	}

	return *msg.Content.StringValue, nil
}
