package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"promptforge/internal/ai/provider"
	"promptforge/internal/client"
	"promptforge/internal/config"
	"promptforge/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "0.0.0.0", Port: 7080, Mode: "test"},
		AI:     config.AIConfig{Provider: "gemini"},
		Client: config.ClientConfig{Timeout: 5 * time.Second},
	}
}

func TestServer_EndToEnd(t *testing.T) {
	Convey("表单客户端经生成接口调用提供方", t, func() {
		var (
			mu      sync.Mutex
			prompts []string
		)
		received := func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), prompts...)
		}
		gen := provider.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			prompts = append(prompts, prompt)
			return "It was a dark night...", nil
		})

		srv, err := New(testConfig(), WithGenerator(gen))
		So(err, ShouldBeNil)
		ts := httptest.NewServer(srv.Engine())
		defer ts.Close()

		rec := &client.Recorder{}
		form := client.NewForm(client.NewHTTPClient(ts.URL+GeneratePath, nil), client.WithNotifier(rec))

		Convey("text 请求完整往返", func() {
			form.Prompt = "A haunted castle"
			form.Type = model.TypeText

			So(form.Submit(context.Background()), ShouldBeNil)
			So(received(), ShouldResemble, []string{"A haunted castle"})
			So(form.View().Text, ShouldEqual, "It was a dark night...")
			So(form.View().Error, ShouldBeEmpty)
			So(rec.Notifications()[0].Message, ShouldEqual, "Generated text successfully")
		})

		Convey("image 请求展示不支持", func() {
			form.Prompt = "a cat"
			form.Type = model.TypeImage

			So(form.Submit(context.Background()), ShouldNotBeNil)
			So(received(), ShouldBeEmpty)
			So(form.View().Error, ShouldEqual, "Image generation not supported in this version")
		})

		Convey("健康检查报告提供方状态", func() {
			resp, err := http.Get(ts.URL + "/ready")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("页面脚本可按 CSP 加载", func() {
			resp, err := http.Get(ts.URL + "/static/form.js")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(resp.Header.Get("Content-Security-Policy"), ShouldContainSubstring, "script-src 'self'")

			body, err := io.ReadAll(resp.Body)
			So(err, ShouldBeNil)
			So(string(body), ShouldContainSubstring, "button.disabled = true")
		})

		Convey("响应带请求 ID", func() {
			resp, err := http.Get(ts.URL + "/health")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.Header.Get("X-Request-Id"), ShouldNotBeEmpty)
		})
	})

	Convey("未配置凭证时服务照常启动", t, func() {
		srv, err := New(testConfig())
		So(err, ShouldBeNil)
		So(srv.generationSvc.Configured(), ShouldBeFalse)

		ts := httptest.NewServer(srv.Engine())
		defer ts.Close()

		form := client.NewForm(client.NewHTTPClient(ts.URL+GeneratePath, nil))
		form.Prompt = "A haunted castle"
		So(form.Submit(context.Background()), ShouldNotBeNil)
		So(form.View().Error, ShouldEqual, "Server configuration error: Missing API key")
	})
}

func TestPageEndpoint(t *testing.T) {
	Convey("PageEndpoint 默认指向本服务", t, func() {
		cfg := testConfig()
		So(PageEndpoint(cfg), ShouldEqual, "http://127.0.0.1:7080/api/generate")

		cfg.Server.Host = "10.0.0.5"
		So(PageEndpoint(cfg), ShouldEqual, "http://10.0.0.5:7080/api/generate")

		cfg.Client.Endpoint = "https://forge.example.com/api/generate"
		So(PageEndpoint(cfg), ShouldEqual, "https://forge.example.com/api/generate")
	})
}
