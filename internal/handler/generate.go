package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"promptforge/internal/model"
	"promptforge/internal/service"
)

const internalServerErrorMessage = "Internal server error"

// maxRequestBodyBytes 请求体上限，超出按非法请求处理
const maxRequestBodyBytes = 1 << 20

// GenerateHandler 生成接口处理器
type GenerateHandler struct {
	generationSvc *service.GenerationService
}

// NewGenerateHandler 创建生成接口处理器
func NewGenerateHandler(generationSvc *service.GenerationService) *GenerateHandler {
	return &GenerateHandler{
		generationSvc: generationSvc,
	}
}

// Generate 生成内容
// @Summary      生成内容
// @Description  将提示词转发给生成服务；仅支持 text，image 返回 501
// @Tags         生成
// @Accept       json
// @Produce      json
// @Param        request  body      model.GenerationRequest  true  "生成请求"
// @Success      200      {object}  model.GenerationResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      500      {object}  model.ErrorResponse
// @Failure      501      {object}  model.ErrorResponse
// @Router       /api/generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	// 凭证检查先于请求体解析
	if !h.generationSvc.Configured() {
		log.Error().Str("request_id", c.GetString("request_id")).Msg("ai api key not configured")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: service.ErrMissingAPIKey.Error()})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodyBytes)

	var req model.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn().Str("request_id", c.GetString("request_id")).Int64("limit", tooLarge.Limit).Msg("request body too large")
		}
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: service.ErrInvalidRequest.Error()})
		return
	}

	resp, err := h.generationSvc.Generate(c.Request.Context(), &req)
	if err != nil {
		status, message := errorStatus(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).
				Str("request_id", c.GetString("request_id")).
				Str("type", req.Type.String()).
				Msg("generate request failed")
		}
		c.JSON(status, model.ErrorResponse{Error: message})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// errorStatus 将服务层错误映射为 HTTP 状态码和响应消息
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMissingAPIKey):
		return http.StatusInternalServerError, service.ErrMissingAPIKey.Error()
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, service.ErrInvalidRequest.Error()
	case errors.Is(err, service.ErrImageNotSupported):
		return http.StatusNotImplemented, service.ErrImageNotSupported.Error()
	}

	message := err.Error()
	if message == "" {
		message = internalServerErrorMessage
	}
	return http.StatusInternalServerError, message
}
