package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "promptforge/docs"
	"promptforge/internal/ai/provider"
	"promptforge/internal/client"
	"promptforge/internal/config"
	"promptforge/internal/handler"
	"promptforge/internal/server/middleware"
	"promptforge/internal/service"
	"promptforge/internal/web"
)

// GeneratePath 生成接口路径
const GeneratePath = "/api/generate"

const shutdownTimeout = 10 * time.Second

// Server HTTP 服务器
type Server struct {
	cfg           *config.Config
	engine        *gin.Engine
	generator     provider.Generator
	generationSvc *service.GenerationService
	pageClient    client.Generator
}

// Option 服务器选项
type Option func(*options)

type options struct {
	generator    provider.Generator
	hasGenerator bool
	pageClient   client.Generator
}

// WithGenerator 使用指定的 Generator 代替按配置创建的提供方，nil 表示未配置凭证
func WithGenerator(g provider.Generator) Option {
	return func(o *options) {
		o.generator = g
		o.hasGenerator = true
	}
}

// WithPageClient 指定表单页面使用的出站客户端
func WithPageClient(c client.Generator) Option {
	return func(o *options) {
		o.pageClient = c
	}
}

// New 创建服务器实例
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	engine.SetHTMLTemplate(tmpl)

	// 未配置凭证时服务照常启动，生成接口按请求返回配置错误
	generator := o.generator
	if !o.hasGenerator {
		if cfg.AI.HasAPIKey() {
			generator, err = provider.New(context.Background(), &cfg.AI)
			if err != nil {
				return nil, fmt.Errorf("failed to create ai provider: %w", err)
			}
			log.Info().
				Str("provider", cfg.AI.Provider).
				Str("model", provider.ModelOf(&cfg.AI)).
				Msg("initialized ai provider")
		} else {
			log.Warn().Msg("AI API key not configured, generate endpoint will report a configuration error")
		}
	}

	pageClient := o.pageClient
	if pageClient == nil {
		endpoint := PageEndpoint(cfg)
		pageClient = client.NewHTTPClient(endpoint, nil)
		log.Debug().Str("endpoint", endpoint).Msg("form page client configured")
	}

	srv := &Server{
		cfg:           cfg,
		engine:        engine,
		generator:     generator,
		generationSvc: service.NewGenerationService(generator, provider.ModelOf(&cfg.AI), cfg.Generation.MaxPromptLength),
		pageClient:    pageClient,
	}

	srv.setupRoutes()

	return srv, nil
}

// PageEndpoint 表单页面调用的生成接口地址，未配置时指向本服务
func PageEndpoint(cfg *config.Config) string {
	if cfg.Client.Endpoint != "" {
		return cfg.Client.Endpoint
	}
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d%s", host, cfg.Server.Port, GeneratePath)
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger("/health", "/ready"))
	s.engine.Use(middleware.CORS())
	s.engine.Use(middleware.SecurityHeaders())

	// 健康检查
	healthHandler := handler.NewHealthHandler(s.generationSvc)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 表单页面
	s.engine.StaticFS("/static", web.Static())
	pageHandler := handler.NewPageHandler(s.pageClient, s.cfg.Client.Timeout)
	s.engine.GET("/", pageHandler.Index)
	s.engine.POST("/", pageHandler.Submit)

	// 生成接口
	generateHandler := handler.NewGenerateHandler(s.generationSvc)
	s.engine.POST(GeneratePath, generateHandler.Generate)
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.Close()
		return err
	case err := <-errCh:
		s.Close()
		return err
	}
}

// Close 释放提供方持有的连接
func (s *Server) Close() {
	closer, ok := s.generator.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close ai provider")
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
