package handler

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"promptforge/internal/client"
	"promptforge/internal/model"
)

const pageTemplate = "index.html"

// PageHandler 表单页面处理器
// 页面提交通过 client.Form 调用生成接口，与 CLI 走同一条路径
type PageHandler struct {
	generator client.Generator
	timeout   time.Duration
}

// NewPageHandler 创建表单页面处理器
func NewPageHandler(generator client.Generator, timeout time.Duration) *PageHandler {
	return &PageHandler{
		generator: generator,
		timeout:   timeout,
	}
}

// pageData 页面模板数据
type pageData struct {
	Prompt        string
	Type          string
	Types         []model.GenerationType
	Error         string
	Text          string
	ImageSrc      template.URL
	Notifications []client.Notification
}

// Index 展示空表单
func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, pageTemplate, pageData{
		Type:  model.TypeText.String(),
		Types: model.GenerationTypes,
	})
}

// Submit 处理表单提交并渲染结果
func (h *PageHandler) Submit(c *gin.Context) {
	rec := &client.Recorder{}
	form := client.NewForm(h.generator, client.WithNotifier(rec), client.WithTimeout(h.timeout))
	form.Prompt = c.PostForm("prompt")
	form.Type = model.GenerationType(c.PostForm("type"))

	// 错误已记录在表单状态中
	_ = form.Submit(c.Request.Context())

	// ImageSrc 只包含校验过的 base64 数据
	view := form.View()
	c.HTML(http.StatusOK, pageTemplate, pageData{
		Prompt:        form.Prompt,
		Type:          form.Type.String(),
		Types:         model.GenerationTypes,
		Error:         view.Error,
		Text:          view.Text,
		ImageSrc:      template.URL(view.ImageSrc),
		Notifications: rec.Notifications(),
	})
}
