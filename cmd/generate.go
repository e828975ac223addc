package cmd

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"promptforge/internal/client"
	"promptforge/internal/model"
	"promptforge/internal/server"
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Submit a prompt to the generation API",
	Long: `Submit one prompt to a running Prompt Forge server and print the result.
The prompt can be given with --prompt or as positional arguments.`,
	Example: `  promptforge generate -t text "A haunted castle"
  promptforge generate --endpoint http://localhost:7080/api/generate -p "A haunted castle"`,
	SilenceErrors: true,
	RunE:          runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.StringP("prompt", "p", "", "prompt text")
	flags.StringP("type", "t", string(model.TypeText), "generation type (text/image)")
	flags.StringP("output", "o", "", "write an image result to this file instead of printing a data URI")
	flags.StringP("endpoint", "e", "", "generation API URL (default: local server /api/generate)")
	flags.Duration("timeout", client.DefaultTimeout, "request timeout")

	_ = viper.BindPFlag("client.endpoint", flags.Lookup("endpoint"))
	_ = viper.BindPFlag("client.timeout", flags.Lookup("timeout"))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	prompt, _ := cmd.Flags().GetString("prompt")
	if prompt == "" && len(args) > 0 {
		prompt = strings.Join(args, " ")
	}
	genType, _ := cmd.Flags().GetString("type")
	output, _ := cmd.Flags().GetString("output")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	// 通知和日志写 stderr，stdout 只输出结果
	logger := stderrLogger(cmd.ErrOrStderr(), cfg.Log.Format)

	endpoint := server.PageEndpoint(cfg)
	form := client.NewForm(
		client.NewHTTPClient(endpoint, nil),
		client.WithNotifier(client.NewLogNotifier(logger)),
		client.WithTimeout(cfg.Client.Timeout),
	)
	form.Prompt = prompt
	form.Type = model.GenerationType(genType)

	logger.Debug().Str("endpoint", endpoint).Str("type", genType).Msg("submitting prompt")

	// 失败已通过通知输出，这里只需要非零退出码
	if err := form.Submit(ctx); err != nil {
		return err
	}

	return reportResult(cmd.OutOrStdout(), logger, form, output)
}

func stderrLogger(w io.Writer, format string) zerolog.Logger {
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// reportResult 输出结果，失败时写错误日志，generate 命令不会由 cobra 打印错误
func reportResult(w io.Writer, logger zerolog.Logger, form *client.Form, output string) error {
	if err := writeResult(w, logger, form, output); err != nil {
		logger.Error().Err(err).Str("output", output).Msg("failed to output result")
		return err
	}
	return nil
}

// writeResult 输出结果：文本直接打印，图片写文件或打印 data URI
func writeResult(w io.Writer, logger zerolog.Logger, form *client.Form, output string) error {
	view := form.View()
	if view.Error != "" {
		return errors.New(view.Error)
	}

	switch {
	case view.Text != "":
		_, err := fmt.Fprintln(w, view.Text)
		return err
	case view.ImageSrc != "" && output != "":
		data, err := base64.StdEncoding.DecodeString(form.Result().Content)
		if err != nil {
			return fmt.Errorf("failed to decode image: %w", err)
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("failed to write image: %w", err)
		}
		logger.Info().Str("file", output).Int("bytes", len(data)).Msg("image saved")
		return nil
	case view.ImageSrc != "":
		_, err := fmt.Fprintln(w, view.ImageSrc)
		return err
	default:
		return errors.New("no result to display")
	}
}
