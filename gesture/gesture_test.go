package gesture

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestInterpreter() *Interpreter {
	return &Interpreter{
		startThreshold:   10,
		releaseThreshold: 80,
	}
}

func TestInterpreter(t *testing.T) {
	Convey("Swipe interpretation", t, func() {
		i := newTestInterpreter()

		Convey("A long upward drag fires next", func() {
			i.Begin(100, 200)
			i.Move(102, 150)
			i.Move(103, 80)
			So(i.Release(), ShouldEqual, IntentNext)
		})

		Convey("A long downward drag fires previous", func() {
			i.Begin(100, 200)
			i.Move(101, 260)
			i.Move(102, 300)
			So(i.Release(), ShouldEqual, IntentPrevious)
		})

		Convey("A short vertical drag snaps back", func() {
			i.Begin(100, 200)
			i.Move(100, 150)
			So(i.Release(), ShouldEqual, IntentNone)
		})

		Convey("A diagonal drag never activates", func() {
			i.Begin(100, 200)
			i.Move(150, 100)
			So(i.State().Active, ShouldBeFalse)
			So(i.Release(), ShouldEqual, IntentNone)
		})

		Convey("A drag below the start threshold never activates", func() {
			i.Begin(100, 200)
			i.Move(100, 192)
			So(i.State().Active, ShouldBeFalse)
		})

		Convey("Activation persists once the drag direction is locked", func() {
			i.Begin(100, 200)
			i.Move(100, 150)
			So(i.State().Active, ShouldBeTrue)

			// drifting sideways after activation does not deactivate
			i.Move(140, 60)
			So(i.State().Active, ShouldBeTrue)
			So(i.Release(), ShouldEqual, IntentNext)
		})

		Convey("State exposes direction and amplitude while dragging", func() {
			i.Begin(100, 200)
			i.Move(100, 140)

			s := i.State()
			So(s.Active, ShouldBeTrue)
			So(s.Direction, ShouldEqual, DirectionUp)
			So(s.Amplitude, ShouldEqual, 60)
		})

		Convey("A closed page gate swallows the drag", func() {
			i.SetPageGate(func() bool { return false })
			i.Begin(100, 200)
			i.Move(100, 80)
			So(i.State().Active, ShouldBeFalse)
			So(i.Release(), ShouldEqual, IntentNone)
		})

		Convey("Reset abandons an active drag", func() {
			i.Begin(100, 200)
			i.Move(100, 80)
			So(i.State().Active, ShouldBeTrue)

			i.Reset()
			So(i.State().Active, ShouldBeFalse)
			So(i.Release(), ShouldEqual, IntentNone)
		})

		Convey("Moves without a begin are ignored", func() {
			i.Move(100, 50)
			So(i.State().Active, ShouldBeFalse)
		})
	})
}
