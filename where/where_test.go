package where

import (
	"strings"
	"testing"

	"github.com/lingoreel-cli/lingoreel/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Resource paths", t, func() {
		Convey("Config should not be empty", func() {
			So(Config(), ShouldNotBeEmpty)
		})

		Convey("Logs should live under the config directory", func() {
			So(strings.HasPrefix(Logs(), Config()), ShouldBeTrue)
		})

		Convey("History should be a file path under the config directory", func() {
			So(strings.HasPrefix(History(), Config()), ShouldBeTrue)
			So(strings.HasSuffix(History(), ".json"), ShouldBeTrue)
		})
	})
}
