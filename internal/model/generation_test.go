package model

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerationType_Valid(t *testing.T) {
	Convey("GenerationType 只接受 text 与 image", t, func() {
		for _, gt := range GenerationTypes {
			So(gt.Valid(), ShouldBeTrue)
		}

		for _, s := range []string{"", "video", "TEXT", " text"} {
			So(GenerationType(s).Valid(), ShouldBeFalse)
		}
	})
}

func TestGenerationRequest_Unmarshal(t *testing.T) {
	Convey("GenerationRequest JSON 解码", t, func() {
		Convey("正常请求", func() {
			var req GenerationRequest
			err := json.Unmarshal([]byte(`{"prompt":"A haunted castle","type":"text"}`), &req)
			So(err, ShouldBeNil)
			So(req.Prompt, ShouldEqual, "A haunted castle")
			So(req.Type, ShouldEqual, TypeText)
		})

		Convey("未知类型可解码但不合法", func() {
			var req GenerationRequest
			So(json.Unmarshal([]byte(`{"prompt":"x","type":"audio"}`), &req), ShouldBeNil)
			So(req.Type.Valid(), ShouldBeFalse)
		})

		Convey("非字符串类型解码失败", func() {
			var req GenerationRequest
			So(json.Unmarshal([]byte(`{"prompt":"x","type":1}`), &req), ShouldNotBeNil)
		})
	})
}
