package version

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Semantic version comparison", t, func() {
		Convey("Orders versions correctly", func() {
			So(must(Compare("1.2.3", "1.2.2")), ShouldEqual, 1)
			So(must(Compare("1.2.3", "1.3.0")), ShouldEqual, -1)
			So(must(Compare("2.0.0", "1.9.9")), ShouldEqual, 1)
			So(must(Compare("1.2.3", "1.2.3")), ShouldEqual, 0)
		})

		Convey("Accepts a v prefix", func() {
			So(must(Compare("v1.0.1", "1.0.0")), ShouldEqual, 1)
		})

		Convey("Rejects malformed versions", func() {
			_, err := Compare("not-a-version", "1.0.0")
			So(err, ShouldNotBeNil)
		})
	})
}

func must(v int, err error) int {
	if err != nil {
		panic(err)
	}
	return v
}
