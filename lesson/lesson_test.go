package lesson

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClip(t *testing.T) {
	Convey("Given a clip from 10s to 20s", t, func() {
		clip := Clip{VideoID: "abc123", ClipStart: 10, ClipEnd: 20}

		Convey("Duration should be 10 seconds", func() {
			So(clip.Duration(), ShouldEqual, 10)
		})

		Convey("RelativeTime should offset from the clip start", func() {
			So(clip.RelativeTime(10), ShouldEqual, 0)
			So(clip.RelativeTime(15.5), ShouldEqual, 5.5)
		})

		Convey("RelativeTime should clamp to the clip bounds", func() {
			So(clip.RelativeTime(8), ShouldEqual, 0)
			So(clip.RelativeTime(25), ShouldEqual, 10)
		})

		Convey("AbsoluteTime should be the inverse within bounds", func() {
			So(clip.AbsoluteTime(3), ShouldEqual, 13)
			So(clip.AbsoluteTime(clip.RelativeTime(17)), ShouldEqual, 17)
		})

		Convey("Validate should accept coherent bounds", func() {
			So(clip.Validate(), ShouldBeTrue)
		})
	})

	Convey("Given a clip with inverted bounds", t, func() {
		clip := Clip{VideoID: "bad", ClipStart: 20, ClipEnd: 10}

		Convey("Validate should report the violation without panicking", func() {
			So(clip.Validate(), ShouldBeFalse)
		})
	})
}

func TestCaptionContains(t *testing.T) {
	Convey("Given a caption spanning [2, 4)", t, func() {
		c := Caption{TargetText: "hola", NativeText: "hello", LocalStart: 2, LocalEnd: 4}

		So(c.Contains(2), ShouldBeTrue)
		So(c.Contains(3.9), ShouldBeTrue)
		So(c.Contains(4), ShouldBeFalse)
		So(c.Contains(1.9), ShouldBeFalse)
	})
}
