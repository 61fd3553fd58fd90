package inline

import (
	"bytes"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lingoreel-cli/lingoreel/lesson"
)

func catalog(ids ...int) []*lesson.Lesson {
	out := make([]*lesson.Lesson, 0, len(ids))
	for _, id := range ids {
		out = append(out, &lesson.Lesson{
			ID:       id,
			Language: "es",
			Content: lesson.Content{
				Video: lesson.Clip{
					VideoID:         "vid",
					ClipStart:       0,
					ClipEnd:         10,
					HighlightPhrase: "buenos días",
					Captions:        []lesson.Caption{{TargetText: "Buenos días", LocalStart: 0, LocalEnd: 2}},
				},
			},
		})
	}
	return out
}

func TestWriteJson(t *testing.T) {
	Convey("JSON output", t, func() {
		Convey("Produces valid JSON for an empty lesson list", func() {
			var buf bytes.Buffer
			opts := &Options{Language: "es", Json: true}
			err := writeJson(&buf, nil, opts)
			So(err, ShouldBeNil)

			var output Output
			err = json.Unmarshal(buf.Bytes(), &output)
			So(err, ShouldBeNil)
			So(output.Language, ShouldEqual, "es")
			So(output.Result, ShouldHaveLength, 0)
		})

		Convey("Strips captions unless requested", func() {
			var buf bytes.Buffer
			opts := &Options{Language: "es", Json: true}
			err := writeJson(&buf, catalog(1), opts)
			So(err, ShouldBeNil)

			var output Output
			So(json.Unmarshal(buf.Bytes(), &output), ShouldBeNil)
			So(output.Result, ShouldHaveLength, 1)
			So(output.Result[0].CaptionCount, ShouldEqual, 1)
			So(output.Result[0].Lesson.Content.Video.Captions, ShouldBeEmpty)
		})

		Convey("Keeps captions when requested", func() {
			var buf bytes.Buffer
			opts := &Options{Language: "es", Json: true, IncludeCaptions: true}
			err := writeJson(&buf, catalog(1), opts)
			So(err, ShouldBeNil)

			var output Output
			So(json.Unmarshal(buf.Bytes(), &output), ShouldBeNil)
			So(output.Result[0].Lesson.Content.Video.Captions, ShouldHaveLength, 1)
		})
	})
}

func TestParseLessonFilter(t *testing.T) {
	lessons := catalog(1, 2, 3, 4, 5)

	Convey("Lesson filters", t, func() {
		apply := func(description string) []*lesson.Lesson {
			filter, err := ParseLessonFilter(description)
			So(err, ShouldBeNil)
			out, err := filter(lessons)
			So(err, ShouldBeNil)
			return out
		}

		Convey("first and last", func() {
			So(apply("first"), ShouldHaveLength, 1)
			So(apply("first")[0].ID, ShouldEqual, 1)
			So(apply("last")[0].ID, ShouldEqual, 5)
		})

		Convey("all", func() {
			So(apply("all"), ShouldHaveLength, 5)
		})

		Convey("id range", func() {
			out := apply("2-4")
			So(out, ShouldHaveLength, 3)
			So(out[0].ID, ShouldEqual, 2)
		})

		Convey("single id", func() {
			out := apply("3")
			So(out, ShouldHaveLength, 1)
			So(out[0].ID, ShouldEqual, 3)
		})

		Convey("highlight phrase match", func() {
			So(apply("@buenos@"), ShouldHaveLength, 5)
			So(apply("@nada@"), ShouldBeEmpty)
		})

		Convey("highlight phrase match folds case and accents", func() {
			So(apply("@BUENOS@"), ShouldHaveLength, 5)
			So(apply("@dias@"), ShouldHaveLength, 5)
		})

		Convey("garbage is rejected", func() {
			_, err := ParseLessonFilter("??!")
			So(err, ShouldNotBeNil)
		})
	})
}
