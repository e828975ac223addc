package model

import (
	"encoding/json"
	"fmt"
)

// GenerationType 生成类型，封闭集合 {text, image}
type GenerationType string

const (
	TypeText  GenerationType = "text"
	TypeImage GenerationType = "image"
)

// GenerationTypes 所有合法的生成类型（按表单展示顺序）
var GenerationTypes = []GenerationType{TypeText, TypeImage}

// Valid 是否属于封闭集合
func (t GenerationType) Valid() bool {
	switch t {
	case TypeText, TypeImage:
		return true
	default:
		return false
	}
}

func (t GenerationType) String() string {
	return string(t)
}

// UnmarshalJSON 拒绝非字符串的 type 字段
func (t *GenerationType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("generation type must be a string: %w", err)
	}
	*t = GenerationType(s)
	return nil
}

// GenerationRequest 生成请求
type GenerationRequest struct {
	Prompt string         `json:"prompt"`
	Type   GenerationType `json:"type"`
}

// GenerationResponse 生成响应
// text: Content 为生成的文本；image: Content 为 base64 编码的图片
type GenerationResponse struct {
	Type    GenerationType `json:"type"`
	Content string         `json:"content"`
}

// ErrorResponse 错误响应（所有接口共用）
type ErrorResponse struct {
	Error string `json:"error"`
}
