package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader 请求 ID 的 Header
	RequestIDHeader = "X-Request-Id"
	// RequestIDKey gin.Context 中保存请求 ID 的 key
	RequestIDKey = "request_id"
)

// RequestID 透传或生成请求 ID，同时写入响应 Header
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}
