package transition

import (
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lingoreel-cli/lingoreel/caption"
	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/playback"
)

type fakePlayer struct {
	mu       sync.Mutex
	position float64
	paused   bool
	loads    []string
	loadErr  error
	seekSkew float64
	done     chan struct{}
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{done: make(chan struct{})}
}

func (f *fakePlayer) Load(videoID, title string, startAt float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loads = append(f.loads, videoID)
	f.position = startAt
	return nil
}

func (f *fakePlayer) SeekTo(seconds float64, allowSeekAhead bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = seconds + f.seekSkew
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

func (f *fakePlayer) Wait() <-chan struct{} { return f.done }

func testLesson(id int) *lesson.Lesson {
	return &lesson.Lesson{
		ID:       id,
		Language: "es",
		Content: lesson.Content{
			Video: lesson.Clip{
				VideoID:         "vid-1",
				ClipStart:       10,
				ClipEnd:         20,
				HighlightPhrase: "muy bien",
			},
		},
	}
}

func newTestMachine(p *fakePlayer) (*Machine, *playback.Controller) {
	c := playback.NewController(p)
	m := NewMachine(p, c, caption.NewSynchronizer(nil))
	m.sleep = func(time.Duration) {}
	return m, c
}

func TestMachine(t *testing.T) {
	Convey("Lesson transition machine", t, func() {
		p := newFakePlayer()
		m, c := newTestMachine(p)
		defer c.StopPolling()

		Convey("Begin walks the phase sequence in order", func() {
			var phases []Phase
			m.OnPhase(func(ph Phase) { phases = append(phases, ph) })

			err := m.Begin(testLesson(1))
			So(err, ShouldBeNil)
			So(phases, ShouldResemble, []Phase{PhaseUnloading, PhaseLoading, PhaseSeeking, PhasePlaying})
			So(m.Phase(), ShouldEqual, PhasePlaying)
			So(c.Identity(), ShouldEqual, "vid-1")
			So(c.State().Ready, ShouldBeTrue)
		})

		Convey("A transition in progress rejects a second Begin", func() {
			var nested error
			fired := false
			m.OnPhase(func(ph Phase) {
				if ph == PhaseLoading && !fired {
					fired = true
					nested = m.Begin(testLesson(2))
				}
			})

			So(m.Begin(testLesson(1)), ShouldBeNil)
			So(errors.Is(nested, ErrBusy), ShouldBeTrue)
		})

		Convey("A load failure drops back to idle", func() {
			p.loadErr = errors.New("player gone")

			err := m.Begin(testLesson(1))
			So(err, ShouldNotBeNil)
			So(m.Phase(), ShouldEqual, PhaseIdle)
			So(c.Identity(), ShouldEqual, "")
		})

		Convey("A failed initial seek still reaches playing", func() {
			p.seekSkew = 5

			err := m.Begin(testLesson(1))
			So(err, ShouldBeNil)
			So(m.Phase(), ShouldEqual, PhasePlaying)
			So(c.State().Ready, ShouldBeTrue)
		})

		Convey("The machine gates the controller until playing", func() {
			So(m.Transitioning(), ShouldBeFalse)
			So(m.PhasePlaying(), ShouldBeFalse)

			m.OnPhase(func(ph Phase) {
				if ph == PhaseSeeking {
					So(m.Transitioning(), ShouldBeTrue)
					So(m.PhasePlaying(), ShouldBeFalse)
				}
			})
			So(m.Begin(testLesson(1)), ShouldBeNil)
			So(m.Transitioning(), ShouldBeFalse)
			So(m.PhasePlaying(), ShouldBeTrue)
		})

		Convey("Playing back-to-back transitions is legal", func() {
			So(m.Begin(testLesson(1)), ShouldBeNil)
			So(m.Begin(testLesson(2)), ShouldBeNil)
			So(m.Phase(), ShouldEqual, PhasePlaying)
		})

		Convey("Reset abandons playback and returns to idle", func() {
			So(m.Begin(testLesson(1)), ShouldBeNil)
			m.Reset()
			So(m.Phase(), ShouldEqual, PhaseIdle)
			So(c.Identity(), ShouldEqual, "")
		})
	})
}

func TestPlayerEvents(t *testing.T) {
	Convey("Given a machine in the playing phase", t, func() {
		p := newFakePlayer()
		m, c := newTestMachine(p)
		So(m.Begin(testLesson(1)), ShouldBeNil)
		c.StopPolling()

		Convey("A pause event is mirrored into the playback state", func() {
			m.handleEvent("pause", true)
			So(c.State().Playing, ShouldBeFalse)

			m.handleEvent("pause", false)
			So(c.State().Playing, ShouldBeTrue)
		})

		Convey("A position event updates relative time", func() {
			m.handleEvent("time-pos", 15.0)
			So(c.State().RelativeTime, ShouldEqual, 5)
		})

		Convey("An end-of-file event loops back to the clip start", func() {
			m.handleEvent("time-pos", 15.0)
			m.handleEvent("eof-reached", true)
			So(c.State().RelativeTime, ShouldEqual, 0)

			pos, _ := p.CurrentTime()
			So(pos, ShouldEqual, 10)
		})

		Convey("Non-boolean and unknown payloads are ignored", func() {
			m.handleEvent("time-pos", "garbage")
			m.handleEvent("pause", 1)
			m.handleEvent("unrelated", nil)
			So(c.State().RelativeTime, ShouldEqual, 0)
		})
	})
}
