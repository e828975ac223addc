// Package client 生成表单组件：维护表单状态、校验、提交和结果渲染
// 网页表单与 CLI 共用
package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"promptforge/internal/model"
)

// DefaultTimeout 单次提交的超时时间
const DefaultTimeout = 30 * time.Second

// 表单提示文案
const (
	ValidationMessage     = "Please enter a prompt and select a valid type"
	unexpectedMessage     = "An unexpected error occurred"
	validationErrorTitle  = "Validation error"
	generationFailedTitle = "Generation failed"
	successTitle          = "Success"
)

var (
	// ErrValidation 本地校验失败，未发出请求
	ErrValidation = errors.New(ValidationMessage)
	// ErrBusy 上一次提交尚未完成
	ErrBusy = errors.New("a generation request is already in flight")
)

// Generator 表单的出站调用
type Generator interface {
	Generate(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error)
}

// Form 表单状态
// Prompt 和 Type 由使用方写入，其余状态只能通过 Submit 改变
type Form struct {
	Prompt string
	Type   model.GenerationType

	generator Generator
	notifier  Notifier
	timeout   time.Duration

	mu      sync.Mutex
	result  *model.GenerationResponse
	errMsg  string
	loading bool
}

// Option 表单选项
type Option func(*Form)

// WithNotifier 设置通知接收方
func WithNotifier(n Notifier) Option {
	return func(f *Form) {
		if n != nil {
			f.notifier = n
		}
	}
}

// WithTimeout 设置单次提交超时
func WithTimeout(d time.Duration) Option {
	return func(f *Form) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// NewForm 创建表单，默认类型为 text
func NewForm(generator Generator, opts ...Option) *Form {
	f := &Form{
		Type:      model.TypeText,
		generator: generator,
		notifier:  nopNotifier{},
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Submit 校验并提交一次生成请求
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return ErrBusy
	}

	prompt, genType := f.Prompt, f.Type
	if strings.TrimSpace(prompt) == "" || !genType.Valid() {
		f.result = nil
		f.errMsg = ValidationMessage
		f.mu.Unlock()
		f.notifier.Notify(Notification{Level: LevelError, Title: validationErrorTitle, Message: ValidationMessage})
		return ErrValidation
	}

	f.loading = true
	f.errMsg = ""
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.loading = false
		f.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.generator.Generate(ctx, &model.GenerationRequest{Prompt: prompt, Type: genType})
	if err == nil && !validResponse(resp) {
		err = ErrInvalidResponse
	}
	if err != nil {
		msg := errorMessage(err)
		f.mu.Lock()
		f.result = nil
		f.errMsg = msg
		f.mu.Unlock()
		f.notifier.Notify(Notification{Level: LevelError, Title: generationFailedTitle, Message: msg})
		return err
	}

	f.mu.Lock()
	f.result = resp
	f.mu.Unlock()
	f.notifier.Notify(Notification{
		Level:   LevelSuccess,
		Title:   successTitle,
		Message: fmt.Sprintf("Generated %s successfully", resp.Type),
	})
	return nil
}

// Result 最近一次成功的结果
func (f *Form) Result() *model.GenerationResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// ErrorMessage 最近一次的错误消息，无错误时为空
func (f *Form) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// Loading 是否有请求在进行中
func (f *Form) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// View 渲染所需的数据
// Text 与 ImageSrc 互斥，由结果的 type 决定
type View struct {
	Error    string
	Text     string
	ImageSrc string
}

// HasResult 是否有可展示的结果
func (v View) HasResult() bool {
	return v.Text != "" || v.ImageSrc != ""
}

// View 根据当前状态生成渲染数据
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{Error: f.errMsg}
	if f.result == nil {
		return v
	}

	switch f.result.Type {
	case model.TypeText:
		v.Text = f.result.Content
	case model.TypeImage:
		v.ImageSrc = imageDataPrefix + f.result.Content
	}
	return v
}

const imageDataPrefix = "data:image/png;base64,"

// validResponse 成功响应必须带 type 和 content，图片内容必须是合法 base64
func validResponse(resp *model.GenerationResponse) bool {
	if resp == nil || resp.Type == "" || resp.Content == "" {
		return false
	}
	if resp.Type == model.TypeImage {
		if _, err := base64.StdEncoding.DecodeString(resp.Content); err != nil {
			return false
		}
	}
	return true
}

// errorMessage 转换为面向用户的消息
func errorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return unexpectedMessage
}
