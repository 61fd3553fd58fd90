package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

// fakePlayer is an in-memory Player with controllable seek behavior.
type fakePlayer struct {
	mu        sync.Mutex
	position  float64
	paused    bool
	seekCalls int
	// deviation is added to the position after each seek, simulating a
	// player that lands off-target.
	deviation float64
	exited    chan struct{}
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{exited: make(chan struct{})}
}

func (f *fakePlayer) Load(videoID, title string, startAt float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = startAt
	return nil
}

func (f *fakePlayer) SeekTo(seconds float64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seekCalls++
	f.position = seconds + f.deviation
	return nil
}

func (f *fakePlayer) CurrentTime() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, nil
}

func (f *fakePlayer) Paused() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused, nil
}

func (f *fakePlayer) SetPaused(paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = paused
	return nil
}

func (f *fakePlayer) IsRunning() bool { return true }

func (f *fakePlayer) Close() error { return nil }

func (f *fakePlayer) Wait() <-chan struct{} { return f.exited }

// newTestSeeker builds a seeker with instant clocks so tests run without delays.
func newTestSeeker(p *fakePlayer) (*Seeker, *time.Time) {
	clock := time.Unix(0, 0)
	s := &Seeker{
		player:           p,
		userThrottle:     300 * time.Millisecond,
		boundaryThrottle: time.Second,
		tolerance:        2,
		firstSeek:        true,
		now:              func() time.Time { return clock },
		sleep:            func(time.Duration) {},
	}
	return s, &clock
}

func advance(clock *time.Time, d time.Duration) {
	*clock = clock.Add(d)
}

func TestSeeker(t *testing.T) {
	Convey("Given a seek executor over a well-behaved player", t, func() {
		p := newFakePlayer()
		s, clock := newTestSeeker(p)

		Convey("A seek should land and verify on the first attempt", func() {
			So(s.Seek(42, KindUser, mo.None[bool]()), ShouldEqual, Applied)
			So(p.position, ShouldEqual, 42)
			So(p.seekCalls, ShouldEqual, 1)
		})

		Convey("Consecutive user seeks inside the throttle window are silent no-ops", func() {
			So(s.Seek(42, KindUser, mo.None[bool]()), ShouldEqual, Applied)
			So(s.Seek(50, KindUser, mo.None[bool]()), ShouldEqual, Throttled)
			So(p.seekCalls, ShouldEqual, 1)

			advance(clock, 301*time.Millisecond)
			So(s.Seek(50, KindUser, mo.None[bool]()), ShouldEqual, Applied)
		})

		Convey("Boundary seeks use the longer throttle window", func() {
			So(s.Seek(10, KindBoundary, mo.None[bool]()), ShouldEqual, Applied)
			advance(clock, 500*time.Millisecond)
			So(s.Seek(10, KindBoundary, mo.None[bool]()), ShouldEqual, Throttled)
			advance(clock, 501*time.Millisecond)
			So(s.Seek(10, KindBoundary, mo.None[bool]()), ShouldEqual, Applied)
		})

		Convey("The prior playing state is restored after the seek", func() {
			p.paused = false
			So(s.Seek(42, KindUser, mo.None[bool]()), ShouldEqual, Applied)
			So(p.paused, ShouldBeFalse)

			advance(clock, time.Second)
			p.paused = true
			So(s.Seek(50, KindUser, mo.None[bool]()), ShouldEqual, Applied)
			So(p.paused, ShouldBeTrue)
		})

		Convey("An explicit resume request overrides the prior state", func() {
			p.paused = true
			So(s.Seek(42, KindUser, mo.Some(true)), ShouldEqual, Applied)
			So(p.paused, ShouldBeFalse)
		})
	})

	Convey("Given a player that lands seeks off-target", t, func() {
		p := newFakePlayer()
		s, _ := newTestSeeker(p)

		Convey("A deviation beyond tolerance triggers exactly one retry", func() {
			p.deviation = 5
			So(s.Seek(42, KindUser, mo.None[bool]()), ShouldEqual, Unverified)
			So(p.seekCalls, ShouldEqual, 2)
		})

		Convey("A deviation within tolerance verifies without retry", func() {
			p.deviation = 1.5
			So(s.Seek(42, KindUser, mo.None[bool]()), ShouldEqual, Applied)
			So(p.seekCalls, ShouldEqual, 1)
		})

		Convey("The mutex is released even after an unverified seek", func() {
			p.deviation = 5
			_ = s.Seek(42, KindUser, mo.None[bool]())
			So(s.InFlight(), ShouldBeFalse)
		})
	})
}

// playingGate reports a fixed phase for controller tests.
type playingGate struct {
	transitioning bool
	playing       bool
}

func (g *playingGate) Transitioning() bool { return g.transitioning }
func (g *playingGate) PhasePlaying() bool  { return g.playing }

func newTestController(p *fakePlayer) (*Controller, *playingGate, *time.Time) {
	c := NewController(p)
	s, clock := newTestSeeker(p)
	c.seeker = s
	gate := &playingGate{playing: true}
	c.AttachGate(gate)
	return c, gate, clock
}

func testClip() lesson.Clip {
	return lesson.Clip{
		VideoID:   "vid-1",
		ClipStart: 10,
		ClipEnd:   20,
	}
}

func TestController(t *testing.T) {
	Convey("Given a controller homed on a clip from 10s to 20s", t, func() {
		p := newFakePlayer()
		c, gate, clock := newTestController(p)
		c.SetClip(testClip())
		c.SetIdentity("vid-1")

		Convey("An in-bounds position report updates relative time", func() {
			c.HandlePosition(15, "vid-1")
			So(c.State().RelativeTime, ShouldEqual, 5)
			So(c.State().Ready, ShouldBeTrue)
		})

		Convey("Relative time never leaves [0, duration]", func() {
			for _, abs := range []float64{9.8, 10, 14.2, 19.999, 20.5, 30} {
				c.HandlePosition(abs, "vid-1")
				st := c.State()
				So(st.RelativeTime, ShouldBeGreaterThanOrEqualTo, 0)
				So(st.RelativeTime, ShouldBeLessThanOrEqualTo, 10)
				advance(clock, 2*time.Second)
			}
		})

		Convey("A report past the clip end loops back to the start", func() {
			c.SetPlaying(true)
			c.HandlePosition(20.3, "vid-1")
			So(c.State().RelativeTime, ShouldEqual, 0)
			So(p.position, ShouldEqual, 10)
			So(p.paused, ShouldBeFalse)
		})

		Convey("The loop clears the first-playthrough flag once", func() {
			So(c.FirstPlaythrough(), ShouldBeTrue)
			var got []bool
			c.OnLoop(func(first bool) { got = append(got, first) })

			c.HandlePosition(20.3, "vid-1")
			advance(clock, 2*time.Second)
			c.HandlePosition(20.3, "vid-1")

			So(c.FirstPlaythrough(), ShouldBeFalse)
			So(got, ShouldResemble, []bool{true, false})
		})

		Convey("A pre-roll position triggers a correction to the clip start", func() {
			c.HandlePosition(7, "vid-1")
			So(p.position, ShouldEqual, 10)
			So(c.State().RelativeTime, ShouldEqual, 0)
		})

		Convey("A position just before the clip start is tolerated", func() {
			c.HandlePosition(9.8, "vid-1")
			So(p.seekCalls, ShouldEqual, 0)
		})

		Convey("Re-reporting an unchanged in-bounds position seeks nothing", func() {
			c.HandlePosition(15, "vid-1")
			c.HandlePosition(15, "vid-1")
			So(p.seekCalls, ShouldEqual, 0)
		})

		Convey("A report with a stale video identity is discarded", func() {
			c.HandlePosition(15, "vid-0")
			So(c.State().RelativeTime, ShouldEqual, 0)
			So(c.State().Ready, ShouldBeFalse)
		})

		Convey("A mismatched identity is adopted while transitioning", func() {
			gate.transitioning = true
			c.HandlePosition(15, "vid-2")
			So(c.Identity(), ShouldEqual, "vid-2")
		})

		Convey("Reports are ignored outside the playing phase", func() {
			gate.playing = false
			c.HandlePosition(15, "vid-1")
			So(c.State().Ready, ShouldBeFalse)
		})

		Convey("SeekTo clamps the target to the clip duration", func() {
			So(c.SeekTo(25), ShouldEqual, Applied)
			So(p.position, ShouldEqual, 20)
			So(c.State().RelativeTime, ShouldEqual, 10)
		})

		Convey("SeekByOffset restarts the clip when the target overshoots either bound", func() {
			c.HandlePosition(15, "vid-1")
			advance(clock, time.Second)

			So(c.SeekByOffset(8), ShouldEqual, Applied)
			So(c.State().RelativeTime, ShouldEqual, 0)
			So(p.position, ShouldEqual, 10)

			advance(clock, time.Second)
			So(c.SeekByOffset(-3), ShouldEqual, Applied)
			So(c.State().RelativeTime, ShouldEqual, 0)
		})

		Convey("Progress guards a zero-duration clip", func() {
			c.SetClip(lesson.Clip{VideoID: "bad", ClipStart: 5, ClipEnd: 5})
			So(c.Progress(), ShouldEqual, 0)
		})
	})
}

func TestPollingAcrossPause(t *testing.T) {
	Convey("Given a polling controller on a clip from 10s to 20s", t, func() {
		p := newFakePlayer()
		c, _, _ := newTestController(p)
		c.SetClip(testClip())
		c.SetIdentity("vid-1")
		c.MarkReady()

		setPosition := func(abs float64) {
			p.mu.Lock()
			p.position = abs
			p.mu.Unlock()
		}

		c.StartPolling(5 * time.Millisecond)
		defer c.StopPolling()

		setPosition(15)
		time.Sleep(100 * time.Millisecond)
		So(c.State().RelativeTime, ShouldEqual, 5)

		Convey("Pausing stops position reports", func() {
			So(c.TogglePause(), ShouldBeNil)
			time.Sleep(50 * time.Millisecond)

			setPosition(18)
			time.Sleep(100 * time.Millisecond)
			So(c.State().RelativeTime, ShouldEqual, 5)

			Convey("Resuming restarts them and the clip end is still enforced", func() {
				So(c.TogglePause(), ShouldBeNil)
				So(c.State().Playing, ShouldBeTrue)

				setPosition(25)
				time.Sleep(200 * time.Millisecond)

				So(c.State().RelativeTime, ShouldEqual, 0)
				p.mu.Lock()
				looped := p.seekCalls > 0 && p.position == 10
				p.mu.Unlock()
				So(looped, ShouldBeTrue)
			})
		})

		Convey("An externally reported resume also restarts the loop", func() {
			c.SetPlaying(false)
			time.Sleep(50 * time.Millisecond)

			c.SetPlaying(true)
			setPosition(25)
			time.Sleep(200 * time.Millisecond)

			So(c.State().RelativeTime, ShouldEqual, 0)
		})
	})
}
