package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/natefinch/lumberjack.v2"

	"promptforge/internal/config"
)

func TestInit(t *testing.T) {
	Convey("Init 配置全局日志", t, func() {
		Convey("非法级别回退到 info", func() {
			So(Init(&config.LogConfig{Level: "verbose", Format: "json"}), ShouldBeNil)
			So(zerolog.GlobalLevel(), ShouldEqual, zerolog.InfoLevel)
		})

		Convey("解析合法级别", func() {
			So(Init(&config.LogConfig{Level: "debug", Format: "console"}), ShouldBeNil)
			So(zerolog.GlobalLevel(), ShouldEqual, zerolog.DebugLevel)
		})

		Convey("日志目录无法创建时返回错误", func() {
			blocker := filepath.Join(t.TempDir(), "blocker")
			So(os.WriteFile(blocker, []byte("x"), 0o644), ShouldBeNil)

			err := Init(&config.LogConfig{Level: "info", Output: "file", FilePath: filepath.Join(blocker, "logs", "app.log")})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "failed to create log directory")
		})
	})
}

func TestNewOutput(t *testing.T) {
	Convey("newOutput 选择日志输出", t, func() {
		Convey("默认标准输出", func() {
			out, err := newOutput(&config.LogConfig{})
			So(err, ShouldBeNil)
			So(out, ShouldEqual, os.Stdout)
		})

		Convey("file 但未配置路径时回退标准输出", func() {
			out, err := newOutput(&config.LogConfig{Output: "file"})
			So(err, ShouldBeNil)
			So(out, ShouldEqual, os.Stdout)
		})

		Convey("file 输出使用轮转文件并创建目录", func() {
			path := filepath.Join(t.TempDir(), "logs", "promptforge.log")
			out, err := newOutput(&config.LogConfig{Output: "file", FilePath: path, MaxBackups: 3})
			So(err, ShouldBeNil)

			_, statErr := os.Stat(filepath.Dir(path))
			So(statErr, ShouldBeNil)

			lj, ok := out.(*lumberjack.Logger)
			So(ok, ShouldBeTrue)
			So(lj.Filename, ShouldEqual, path)
			So(lj.MaxSize, ShouldEqual, 10)
			So(lj.MaxBackups, ShouldEqual, 3)
		})
	})
}
