package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/generative-ai-go/genai"
	. "github.com/smartystreets/goconvey/convey"
	"google.golang.org/api/option"

	"promptforge/internal/config"
)

// fakeChatModel 记录收到的消息并返回预设结果
type fakeChatModel struct {
	reply    *schema.Message
	err      error
	received []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.received = input
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestNew(t *testing.T) {
	Convey("New 根据配置创建 Generator", t, func() {
		ctx := context.Background()

		Convey("缺少 API Key 返回错误", func() {
			_, err := New(ctx, &config.AIConfig{Provider: "gemini"})
			So(err, ShouldNotBeNil)
		})

		Convey("未知提供方返回错误", func() {
			_, err := New(ctx, &config.AIConfig{Provider: "unknown", APIKey: "k"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unsupported AI provider")
		})

		Convey("gemini 为默认提供方", func() {
			g, err := New(ctx, &config.AIConfig{APIKey: "k"})
			So(err, ShouldBeNil)
			client, ok := g.(*GeminiClient)
			So(ok, ShouldBeTrue)
			So(client.model, ShouldEqual, DefaultGeminiModel)
		})

		Convey("volcengine 使用 SDK 客户端", func() {
			g, err := New(ctx, &config.AIConfig{Provider: "volcengine", APIKey: "k"})
			So(err, ShouldBeNil)
			client, ok := g.(*VolcengineClient)
			So(ok, ShouldBeTrue)
			So(client.model, ShouldEqual, DefaultArkModel)
		})
	})
}

func TestModelOf(t *testing.T) {
	Convey("ModelOf 优先使用配置的模型", t, func() {
		So(ModelOf(&config.AIConfig{Provider: "gemini", Model: "gemini-2.0-flash"}), ShouldEqual, "gemini-2.0-flash")
		So(ModelOf(&config.AIConfig{Provider: "gemini"}), ShouldEqual, DefaultGeminiModel)
		So(ModelOf(&config.AIConfig{Provider: "ark"}), ShouldEqual, DefaultArkModel)
		So(ModelOf(&config.AIConfig{Provider: "openai"}), ShouldEqual, DefaultOpenAIModel)
	})
}

func TestEinoGenerator_Generate(t *testing.T) {
	Convey("EinoGenerator 以单条用户消息调用模型", t, func() {
		ctx := context.Background()

		Convey("返回模型内容", func() {
			fake := &fakeChatModel{reply: schema.AssistantMessage("It was a dark night...", nil)}
			got, err := NewEinoGenerator(fake, time.Second).Generate(ctx, "A haunted castle")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "It was a dark night...")
			So(fake.received, ShouldHaveLength, 1)
			So(fake.received[0].Role, ShouldEqual, schema.User)
			So(fake.received[0].Content, ShouldEqual, "A haunted castle")
		})

		Convey("模型错误被包装", func() {
			fake := &fakeChatModel{err: errors.New("rate limited")}
			_, err := NewEinoGenerator(fake, 0).Generate(ctx, "x")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "rate limited")
		})

		Convey("空内容视为错误", func() {
			fake := &fakeChatModel{reply: schema.AssistantMessage("", nil)}
			_, err := NewEinoGenerator(fake, 0).Generate(ctx, "x")
			So(errors.Is(err, ErrEmptyResponse), ShouldBeTrue)
		})
	})
}

// geminiBody generateContent 请求体中测试关心的部分
type geminiBody struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

func TestGeminiClient_Generate(t *testing.T) {
	Convey("GeminiClient 调用 generateContent", t, func() {
		ctx := context.Background()

		newClient := func(h http.HandlerFunc) (*GeminiClient, func()) {
			srv := httptest.NewServer(h)
			client, err := NewGeminiClient(ctx, &config.AIConfig{
				APIKey: "secret",
				Model:  "models/gemini-test",
			}, option.WithEndpoint(srv.URL), option.WithHTTPClient(srv.Client()))
			So(err, ShouldBeNil)
			return client, func() {
				_ = client.Close()
				srv.Close()
			}
		}

		Convey("拼接候选内容", func() {
			var gotPath, gotRole, gotPrompt string
			client, closeFn := newClient(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				var body geminiBody
				if err := json.NewDecoder(r.Body).Decode(&body); err == nil && len(body.Contents) > 0 && len(body.Contents[0].Parts) > 0 {
					gotRole = body.Contents[0].Role
					gotPrompt = body.Contents[0].Parts[0].Text
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"It was "},{"text":"a dark night..."}]}}]}`))
			})
			defer closeFn()

			got, err := client.Generate(ctx, "A haunted castle")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "It was a dark night...")
			So(gotPath, ShouldEndWith, "/models/gemini-test:generateContent")
			So(gotRole, ShouldEqual, "user")
			So(gotPrompt, ShouldEqual, "A haunted castle")
		})

		Convey("透传提供方错误消息", func() {
			client, closeFn := newClient(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
			})
			defer closeFn()

			_, err := client.Generate(ctx, "x")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldStartWith, "gemini api error")
			So(err.Error(), ShouldContainSubstring, "API key not valid")
		})

		Convey("无候选内容", func() {
			client, closeFn := newClient(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"candidates":[]}`))
			})
			defer closeFn()

			_, err := client.Generate(ctx, "x")
			So(errors.Is(err, ErrEmptyResponse), ShouldBeTrue)
		})

		Convey("提示词被拦截", func() {
			client, closeFn := newClient(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
			})
			defer closeFn()

			_, err := client.Generate(ctx, "x")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldStartWith, "prompt blocked by gemini")

			var blocked *genai.BlockedError
			So(errors.As(err, &blocked), ShouldBeTrue)
		})

		Convey("响应不是 JSON", func() {
			client, closeFn := newClient(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			})
			defer closeFn()

			_, err := client.Generate(ctx, "x")
			So(err, ShouldNotBeNil)
		})

		Convey("缺少 API Key", func() {
			_, err := NewGeminiClient(ctx, &config.AIConfig{APIKey: "  "})
			So(err, ShouldNotBeNil)
		})
	})
}
