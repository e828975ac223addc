package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"promptforge/internal/config"
)

// GeminiClient 通过 genai SDK 调用 Gemini generateContent
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient 创建 Gemini 客户端
// opts 追加在配置生成的选项之后，测试时可覆盖 endpoint 和 http client
func NewGeminiClient(ctx context.Context, cfg *config.AIConfig, opts ...option.ClientOption) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key required")
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if baseURL := strings.TrimRight(cfg.BaseURL, "/"); baseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(baseURL))
	}
	clientOpts = append(clientOpts, opts...)

	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   normalizeModel(ModelOf(cfg)),
		timeout: timeoutOf(cfg),
	}, nil
}

// Generate 实现 Generator
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.GenerativeModel(c.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", fmt.Errorf("prompt blocked by gemini: %w", err)
		}
		return "", fmt.Errorf("gemini api error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// Close 释放底层连接
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// normalizeModel genai 会自动补 models/ 前缀
func normalizeModel(model string) string {
	model = strings.TrimSpace(model)
	return strings.TrimPrefix(model, "models/")
}
