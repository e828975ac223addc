package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"promptforge/internal/ai/provider"
	"promptforge/internal/model"
)

// 生成服务的错误，由 handler 映射为 HTTP 状态码
var (
	ErrMissingAPIKey     = errors.New("Server configuration error: Missing API key")
	ErrInvalidRequest    = errors.New("Prompt and valid type (text or image) are required")
	ErrImageNotSupported = errors.New("Image generation not supported in this version")
)

// GenerationService 生成服务
// 无状态，每个请求独立处理
type GenerationService struct {
	generator       provider.Generator
	model           string
	maxPromptLength int
}

// NewGenerationService 创建生成服务
// generator 为 nil 表示未配置凭证，此时所有请求都返回 ErrMissingAPIKey
func NewGenerationService(generator provider.Generator, modelName string, maxPromptLength int) *GenerationService {
	return &GenerationService{
		generator:       generator,
		model:           modelName,
		maxPromptLength: maxPromptLength,
	}
}

// Configured 是否已配置提供方凭证
func (s *GenerationService) Configured() bool {
	return s.generator != nil
}

// Model 使用的模型标识
func (s *GenerationService) Model() string {
	return s.model
}

// Validate 校验请求：prompt 去除空白后非空且不超长，type 属于封闭集合
func (s *GenerationService) Validate(req *model.GenerationRequest) error {
	if req == nil {
		return ErrInvalidRequest
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" || !req.Type.Valid() {
		return ErrInvalidRequest
	}
	if s.maxPromptLength > 0 && utf8.RuneCountInString(prompt) > s.maxPromptLength {
		return ErrInvalidRequest
	}
	return nil
}

// Generate 按类型分发请求
// 顺序：凭证 -> 参数 -> 类型；只有 text 会调用提供方
func (s *GenerationService) Generate(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error) {
	if !s.Configured() {
		return nil, ErrMissingAPIKey
	}
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	switch req.Type {
	case model.TypeText:
		return s.generateText(ctx, req.Prompt)
	case model.TypeImage:
		return nil, ErrImageNotSupported
	default:
		return nil, fmt.Errorf("unhandled generation type %q: %w", req.Type, ErrInvalidRequest)
	}
}

func (s *GenerationService) generateText(ctx context.Context, prompt string) (*model.GenerationResponse, error) {
	logger := log.With().Str("model", s.model).Int("prompt_len", utf8.RuneCountInString(prompt)).Logger()

	content, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		logger.Error().Err(err).Msg("text generation failed")
		return nil, err
	}

	logger.Info().Int("content_len", utf8.RuneCountInString(content)).Msg("text generation completed")

	return &model.GenerationResponse{
		Type:    model.TypeText,
		Content: content,
	}, nil
}
