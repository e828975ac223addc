package config

import (
	"errors"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	AI         AIConfig         `mapstructure:"ai"`
	Generation GenerationConfig `mapstructure:"generation"`
	Client     ClientConfig     `mapstructure:"client"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig 生成服务提供方配置
type AIConfig struct {
	Provider string          `mapstructure:"provider"` // gemini, openai, azure, ark, volcengine
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Timeout  time.Duration   `mapstructure:"timeout"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// GenerationConfig 生成接口的输入限制
type GenerationConfig struct {
	MaxPromptLength int `mapstructure:"max_prompt_length"` // 按字符计，0 表示不限制
}

// ClientConfig 表单客户端配置（网页表单与 CLI 共用）
type ClientConfig struct {
	Endpoint string        `mapstructure:"endpoint"` // 为空时使用本服务的 /api/generate
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
	MaxSize    int    `mapstructure:"max_size"`    // 单个日志文件最大尺寸 (MB)
	MaxBackups int    `mapstructure:"max_backups"` // 保留的旧日志个数
	MaxAge     int    `mapstructure:"max_age"`     // 旧日志保留天数
	Compress   bool   `mapstructure:"compress"`
}

// Providers 支持的 AI 提供方
var Providers = map[string]bool{
	"gemini":     true,
	"openai":     true,
	"azure":      true,
	"ark":        true,
	"volcengine": true,
}

// HasAPIKey 是否配置了提供方凭证
func (c *AIConfig) HasAPIKey() bool {
	return c.APIKey != ""
}

// Validate 验证配置有效性
// 缺少 API Key 不在这里报错，由生成接口在每次请求时检查
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if !Providers[c.AI.Provider] {
		return errors.New("invalid ai provider, must be gemini/openai/azure/ark/volcengine")
	}

	if c.Client.Timeout <= 0 {
		return errors.New("client timeout must be positive")
	}

	if c.Generation.MaxPromptLength < 0 {
		return errors.New("generation max_prompt_length must not be negative")
	}

	return nil
}
