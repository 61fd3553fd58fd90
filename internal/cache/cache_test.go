package cache

import (
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lingoreel-cli/lingoreel/filesystem"
	"github.com/lingoreel-cli/lingoreel/where"
)

func init() {
	filesystem.SetMemMapFs()
}

type payload struct {
	ID     int    `json:"id"`
	Phrase string `json:"phrase"`
}

func TestCache(t *testing.T) {
	Convey("Given a cached lesson payload", t, func() {
		key := GenerateKey("es", 7)
		So(Write(key, &payload{ID: 7, Phrase: "muy bien"}), ShouldBeNil)

		Convey("It should read back the stored value", func() {
			var got payload
			So(Read(key, &got), ShouldBeTrue)
			So(got.ID, ShouldEqual, 7)
			So(got.Phrase, ShouldEqual, "muy bien")
		})

		Convey("A different language should map to a different key", func() {
			So(GenerateKey("fr", 7), ShouldNotEqual, key)

			var got payload
			So(Read(GenerateKey("fr", 7), &got), ShouldBeFalse)
		})

		Convey("An expired entry should be treated as a miss", func() {
			stale := time.Now().Add(-TTL - time.Hour)
			path := filepath.Join(where.Cache(), key)
			So(filesystem.API().Chtimes(path, stale, stale), ShouldBeNil)

			var got payload
			So(Read(key, &got), ShouldBeFalse)
		})
	})

	Convey("Reading a missing key should fail without error", t, func() {
		var got payload
		So(Read(GenerateKey("de", 99), &got), ShouldBeFalse)
	})
}
