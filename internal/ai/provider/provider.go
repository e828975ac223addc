// Package provider 封装外部生成服务提供方
// 所有提供方都实现 Generator：输入提示词，返回生成的文本
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promptforge/internal/config"
)

// 各提供方的默认模型
const (
	DefaultGeminiModel     = "gemini-1.5-flash"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultArkModel        = "doubao-seed-1-6-flash-250615"
	DefaultArkBaseURL      = "https://ark.cn-beijing.volces.com/api/v3"
	defaultProviderTimeout = 60 * time.Second
)

// ErrEmptyResponse 提供方返回了空内容
var ErrEmptyResponse = errors.New("empty response from provider")

// Generator 文本生成能力
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc 函数适配器
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate 实现 Generator
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// New 根据配置创建 Generator
// 调用方需保证已配置 API Key
func New(ctx context.Context, cfg *config.AIConfig) (Generator, error) {
	if !cfg.HasAPIKey() {
		return nil, errors.New("ai api key is required")
	}

	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiClient(ctx, cfg)
	case "openai", "azure", "ark":
		chatModel, err := NewChatModel(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s chat model: %w", cfg.Provider, err)
		}
		return NewEinoGenerator(chatModel, timeoutOf(cfg)), nil
	case "volcengine":
		return NewVolcengineClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

// ModelOf 返回实际使用的模型标识
func ModelOf(cfg *config.AIConfig) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	switch cfg.Provider {
	case "gemini", "":
		return DefaultGeminiModel
	case "ark", "volcengine":
		return DefaultArkModel
	default:
		return DefaultOpenAIModel
	}
}

func timeoutOf(cfg *config.AIConfig) time.Duration {
	if cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return defaultProviderTimeout
}
