package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"promptforge/internal/service"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	generationSvc *service.GenerationService
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(generationSvc *service.GenerationService) *HealthHandler {
	return &HealthHandler{generationSvc: generationSvc}
}

// Health 健康检查
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready 就绪检查
// 未配置凭证时服务仍然可用，生成接口会返回配置错误
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "ready",
		"provider_configured": h.generationSvc.Configured(),
		"model":               h.generationSvc.Model(),
	})
}
