package caption

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lingoreel-cli/lingoreel/lesson"
)

func sampleCaptions() []lesson.Caption {
	return []lesson.Caption{
		{TargetText: "Hola, ¿cómo estás?", NativeText: "Hi, how are you?", LocalStart: 0, LocalEnd: 2},
		{TargetText: "Estoy muy bien, gracias.", NativeText: "I'm very well, thanks.", LocalStart: 2, LocalEnd: 4.5},
		{TargetText: "Nos vemos mañana.", NativeText: "See you tomorrow.", LocalStart: 5, LocalEnd: 7},
	}
}

func TestActiveCaption(t *testing.T) {
	captions := sampleCaptions()

	Convey("Active caption lookup", t, func() {
		Convey("Finds the caption covering a time", func() {
			c, ok := ActiveCaption(captions, 3).Get()
			So(ok, ShouldBeTrue)
			So(c.TargetText, ShouldEqual, "Estoy muy bien, gracias.")
		})

		Convey("Caption end is exclusive", func() {
			c, ok := ActiveCaption(captions, 2).Get()
			So(ok, ShouldBeTrue)
			So(c.TargetText, ShouldEqual, "Estoy muy bien, gracias.")
		})

		Convey("Gaps between captions resolve to none", func() {
			So(ActiveCaption(captions, 4.7).IsAbsent(), ShouldBeTrue)
		})

		Convey("Time past the last caption resolves to none", func() {
			So(ActiveCaption(captions, 10).IsAbsent(), ShouldBeTrue)
		})
	})
}

func TestFindHighlight(t *testing.T) {
	Convey("Highlight cascade", t, func() {
		Convey("Exact substring wins first", func() {
			m, ok := FindHighlight("Estoy muy bien, gracias.", "muy bien").Get()
			So(ok, ShouldBeTrue)
			So(m.Strategy, ShouldEqual, "exact")
			So("Estoy muy bien, gracias."[m.Span.Start:m.Span.End], ShouldEqual, "muy bien")
		})

		Convey("Accents fold away", func() {
			text := "Nos vemos mañana."
			m, ok := FindHighlight(text, "manana").Get()
			So(ok, ShouldBeTrue)
			So(m.Strategy, ShouldEqual, "accent-normalized")
			So(text[m.Span.Start:m.Span.End], ShouldEqual, "mañana")
		})

		Convey("Punctuation is ignored", func() {
			text := "Estoy muy bien, gracias."
			m, ok := FindHighlight(text, "bien gracias").Get()
			So(ok, ShouldBeTrue)
			So(m.Strategy, ShouldEqual, "punctuation-stripped")
		})

		Convey("Longest word of the phrase matches as a fallback", func() {
			text := "Estoy muy bien hoy."
			m, ok := FindHighlight(text, "bien entonces amigo").Get()
			So(ok, ShouldBeTrue)
			So(m.Strategy, ShouldEqual, "substring")
		})

		Convey("Near misses match fuzzily", func() {
			text := "Estoy muy bein hoy."
			m, ok := FindHighlight(text, "muy bien").Get()
			So(ok, ShouldBeTrue)
			So(m.Strategy, ShouldEqual, "fuzzy-character")
		})

		Convey("Unrelated text does not match", func() {
			So(FindHighlight("completamente diferente", "muy bien gracias").IsAbsent(), ShouldBeTrue)
		})

		Convey("Empty inputs never match", func() {
			So(FindHighlight("", "frase").IsAbsent(), ShouldBeTrue)
			So(FindHighlight("texto", "").IsAbsent(), ShouldBeTrue)
		})
	})
}

func TestIsHighlighted(t *testing.T) {
	Convey("Highlight containment", t, func() {
		So(IsHighlighted("Nos vemos mañana.", "MANANA"), ShouldBeTrue)
		So(IsHighlighted("Nos vemos mañana.", "ayer"), ShouldBeFalse)
	})
}

func TestSynchronizer(t *testing.T) {
	clip := lesson.Clip{
		VideoID:         "abc123",
		ClipStart:       10,
		ClipEnd:         20,
		HighlightPhrase: "muy bien",
		Captions:        sampleCaptions(),
	}

	Convey("Phrase replay", t, func() {
		var seeks []float64
		s := NewSynchronizer(func(rel float64) { seeks = append(seeks, rel) })
		s.enabled = true
		s.limit = 2
		s.SetClip(clip)

		Convey("Replays on leaving the highlighted caption", func() {
			s.Update(1)
			s.Update(3)
			So(s.Replay().ShouldRepeat, ShouldBeTrue)
			s.Update(4.7)
			So(seeks, ShouldResemble, []float64{2})
			So(s.Replay().RepeatCount, ShouldEqual, 1)
		})

		Convey("Stops after the replay limit", func() {
			for i := 0; i < 4; i++ {
				s.Update(3)
				s.Update(6)
			}
			So(seeks, ShouldResemble, []float64{2, 2})
			So(s.Replay().RepeatCount, ShouldEqual, 2)
		})

		Convey("Does not replay after the first playthrough ends", func() {
			s.Update(3)
			s.EndFirstPlaythrough()
			s.Update(6)
			So(seeks, ShouldBeEmpty)
		})

		Convey("Does not replay when disabled", func() {
			s.enabled = false
			s.Update(3)
			s.Update(6)
			So(seeks, ShouldBeEmpty)
		})

		Convey("Resets on a new clip", func() {
			s.Update(3)
			s.Update(6)
			So(s.Replay().RepeatCount, ShouldEqual, 1)

			s.SetClip(clip)
			So(s.Replay().RepeatCount, ShouldEqual, 0)
			So(s.Replay().FirstPlaythrough, ShouldBeTrue)
		})

		Convey("Active caption is exposed after Update", func() {
			s.Update(3)
			c, ok := s.Active().Get()
			So(ok, ShouldBeTrue)
			So(c.NativeText, ShouldEqual, "I'm very well, thanks.")
		})
	})
}
