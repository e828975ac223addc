package provider

import (
	"context"
	"fmt"
	"time"

	arkext "github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"promptforge/internal/config"
)

// NewChatModel 创建 Eino ChatModel
// 支持: openai, azure, ark
func NewChatModel(ctx context.Context, cfg *config.AIConfig) (model.BaseChatModel, error) {
	switch cfg.Provider {
	case "openai":
		return newOpenAIChatModel(ctx, cfg, false)
	case "azure":
		return newOpenAIChatModel(ctx, cfg, true)
	case "ark":
		return newArkChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("provider %s is not backed by eino", cfg.Provider)
	}
}

// newOpenAIChatModel 创建 OpenAI / Azure OpenAI ChatModel
func newOpenAIChatModel(ctx context.Context, cfg *config.AIConfig, byAzure bool) (model.BaseChatModel, error) {
	modelCfg := &openai.ChatModelConfig{
		Model:   ModelOf(cfg),
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		ByAzure: byAzure,
	}

	if cfg.Options.Temperature > 0 {
		temp := float32(cfg.Options.Temperature)
		modelCfg.Temperature = &temp
	}
	if cfg.Options.MaxTokens > 0 {
		maxTokens := cfg.Options.MaxTokens
		modelCfg.MaxTokens = &maxTokens
	}
	if cfg.Options.TopP > 0 {
		topP := float32(cfg.Options.TopP)
		modelCfg.TopP = &topP
	}

	return openai.NewChatModel(ctx, modelCfg)
}

// newArkChatModel 创建 Ark ChatModel（eino-ext 模块）
func newArkChatModel(ctx context.Context, cfg *config.AIConfig) (model.BaseChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultArkBaseURL
	}

	modelCfg := &arkext.ChatModelConfig{
		Model:   ModelOf(cfg),
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
	}

	if cfg.Options.Temperature > 0 {
		temp := float32(cfg.Options.Temperature)
		modelCfg.Temperature = &temp
	}
	if cfg.Options.MaxTokens > 0 {
		maxTokens := cfg.Options.MaxTokens
		modelCfg.MaxTokens = &maxTokens
	}
	if cfg.Options.TopP > 0 {
		topP := float32(cfg.Options.TopP)
		modelCfg.TopP = &topP
	}

	return arkext.NewChatModel(ctx, modelCfg)
}

// EinoGenerator 基于 Eino ChatModel 的 Generator
type EinoGenerator struct {
	chatModel model.BaseChatModel
	timeout   time.Duration
}

// NewEinoGenerator 创建基于 Eino 的 Generator，timeout 为 0 时不额外限制
func NewEinoGenerator(chatModel model.BaseChatModel, timeout time.Duration) *EinoGenerator {
	return &EinoGenerator{
		chatModel: chatModel,
		timeout:   timeout,
	}
}

// Generate 以单条用户消息调用 ChatModel
func (g *EinoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.chatModel == nil {
		return "", fmt.Errorf("chatModel is required")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	messages := []*schema.Message{
		schema.UserMessage(prompt),
	}

	resp, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return "", ErrEmptyResponse
	}

	return resp.Content, nil
}
