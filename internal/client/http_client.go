package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"promptforge/internal/model"
)

// 响应体读取上限
const maxResponseBytes = 8 << 20

var (
	// ErrTimeout 请求超时，按网络错误处理
	ErrTimeout = errors.New("Request timed out")
	// ErrInvalidResponse 成功响应缺少 type 或 content
	ErrInvalidResponse = errors.New("Invalid response from server")
)

// StatusError 非 2xx 响应
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// NetworkError 请求未得到响应
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "Network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPClient 调用生成接口
// 超时由调用方的 context 控制
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPClient 创建生成接口客户端，httpClient 为 nil 时使用默认客户端
func NewHTTPClient(endpoint string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPClient{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// Generate 发送一次生成请求
func (c *HTTPClient) Generate(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(resp.StatusCode, data)
	}

	var out model.GenerationResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, ErrInvalidResponse
	}
	if out.Type == "" || out.Content == "" || !out.Type.Valid() {
		return nil, ErrInvalidResponse
	}

	return &out, nil
}

// newStatusError 优先使用响应体中的 error 字段
func newStatusError(code int, body []byte) *StatusError {
	var errResp model.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &StatusError{StatusCode: code, Message: errResp.Error}
	}
	return &StatusError{
		StatusCode: code,
		Message:    fmt.Sprintf("HTTP error! status: %d", code),
	}
}
