package navigate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lingoreel-cli/lingoreel/filesystem"
	"github.com/lingoreel-cli/lingoreel/lesson"
)

func init() {
	filesystem.SetMemMapFs()
}

type fakeService struct {
	mu         sync.Mutex
	lessons    map[int]*lesson.Lesson
	max        int
	fetchErr   map[int]error
	updateErr  error
	updates    []int
	fetchCalls int

	// block, when set, stalls FetchLesson until the channel closes.
	block chan struct{}
}

func (s *fakeService) FetchLesson(_ context.Context, id int, _ string) (*lesson.Lesson, error) {
	s.mu.Lock()
	s.fetchCalls++
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	if err := s.fetchErr[id]; err != nil {
		return nil, err
	}
	return s.lessons[id], nil
}

func (s *fakeService) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchCalls
}

func (s *fakeService) MaxLessonID(_ context.Context, _ string) (int, error) {
	return s.max, nil
}

func (s *fakeService) UpdateCurrentLesson(_ context.Context, _ string, lessonID int, _ string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, lessonID)
	return nil
}

type fakeGate struct {
	access lesson.Access
	err    error
}

func (g *fakeGate) CheckAccess(_ context.Context, _ string) (lesson.Access, error) {
	return g.access, g.err
}

type fakeDispatcher struct {
	began    []int
	busy     bool
	beginErr error
}

func (d *fakeDispatcher) Begin(l *lesson.Lesson) error {
	if d.beginErr != nil {
		return d.beginErr
	}
	d.began = append(d.began, l.ID)
	return nil
}

func (d *fakeDispatcher) Transitioning() bool { return d.busy }

func stubLessons(ids ...int) map[int]*lesson.Lesson {
	out := make(map[int]*lesson.Lesson, len(ids))
	for _, id := range ids {
		out[id] = &lesson.Lesson{
			ID:       id,
			Language: "es",
			Content:  lesson.Content{Video: lesson.Clip{VideoID: "vid", ClipStart: 0, ClipEnd: 10}},
		}
	}
	return out
}

func newTestNavigator(s *fakeService, g *fakeGate, d *fakeDispatcher) *Navigator {
	n := NewNavigator(s, g, d)
	n.language = "es"
	n.userID = "learner-1"
	return n
}

func TestNavigator(t *testing.T) {
	ctx := context.Background()

	Convey("Lesson navigation", t, func() {
		service := &fakeService{
			lessons:  stubLessons(1, 2, 3),
			max:      3,
			fetchErr: map[int]error{},
		}
		gate := &fakeGate{access: lesson.Access{Allowed: true}}
		dispatcher := &fakeDispatcher{}

		var notices []string
		var opened []string
		n := newTestNavigator(service, gate, dispatcher)
		n.OnNotify(func(msg string) { notices = append(notices, msg) })
		n.openURL = func(url string) error {
			opened = append(opened, url)
			return nil
		}

		Convey("Next advances to the following lesson", func() {
			So(n.Load(ctx, 1), ShouldBeNil)
			So(n.Next(ctx), ShouldBeNil)
			So(dispatcher.began, ShouldResemble, []int{1, 2})
			So(n.Current().ID, ShouldEqual, 2)
		})

		Convey("Next wraps past the last lesson to the first", func() {
			So(n.Load(ctx, 3), ShouldBeNil)
			So(n.Next(ctx), ShouldBeNil)
			So(n.Current().ID, ShouldEqual, 1)
		})

		Convey("The pointer is persisted before the transition starts", func() {
			So(n.Load(ctx, 1), ShouldBeNil)
			So(n.Next(ctx), ShouldBeNil)
			So(service.updates, ShouldResemble, []int{1, 2})
		})

		Convey("A failed pointer save does not block navigation", func() {
			service.updateErr = errors.New("backend down")
			So(n.Load(ctx, 1), ShouldBeNil)
			So(n.Current().ID, ShouldEqual, 1)
		})

		Convey("Next falls back to lesson 1 when the candidate fails", func() {
			service.fetchErr[2] = errors.New("timeout")
			So(n.Load(ctx, 1), ShouldBeNil)
			So(n.Next(ctx), ShouldBeNil)
			So(n.Current().ID, ShouldEqual, 1)
		})

		Convey("Next surfaces a fatal error when the fallback also fails", func() {
			service.fetchErr[2] = errors.New("timeout")
			service.fetchErr[1] = errors.New("timeout")
			n.current = &lesson.Lesson{ID: 1}
			So(n.Next(ctx), ShouldNotBeNil)
		})

		Convey("A denied gate redirects and changes nothing", func() {
			gate.access = lesson.Access{Allowed: false, RedirectURL: "https://lingoreel.app/upgrade"}
			So(n.Load(ctx, 1), ShouldBeNil)
			dispatcher.began = nil

			So(n.Next(ctx), ShouldBeNil)
			So(dispatcher.began, ShouldBeEmpty)
			So(n.Current().ID, ShouldEqual, 1)
			So(opened, ShouldResemble, []string{"https://lingoreel.app/upgrade"})
			So(notices, ShouldContain, "upgrade required to continue")
		})

		Convey("An unreachable gate never blocks the learner", func() {
			gate.err = errors.New("gate down")
			gate.access = lesson.Access{}
			So(n.Load(ctx, 1), ShouldBeNil)
			So(n.Next(ctx), ShouldBeNil)
			So(n.Current().ID, ShouldEqual, 2)
		})

		Convey("Previous steps back one lesson", func() {
			So(n.Load(ctx, 3), ShouldBeNil)
			So(n.Previous(ctx), ShouldBeNil)
			So(n.Current().ID, ShouldEqual, 2)
		})

		Convey("Previous clamps at the first lesson", func() {
			So(n.Load(ctx, 1), ShouldBeNil)
			dispatcher.began = nil

			So(n.Previous(ctx), ShouldBeNil)
			So(dispatcher.began, ShouldBeEmpty)
			So(notices, ShouldContain, "already at the first lesson")
		})

		Convey("Previous aborts in place when the candidate is missing", func() {
			delete(service.lessons, 2)
			So(n.Load(ctx, 3), ShouldBeNil)
			dispatcher.began = nil

			So(n.Previous(ctx), ShouldBeNil)
			So(dispatcher.began, ShouldBeEmpty)
			So(n.Current().ID, ShouldEqual, 3)
		})

		Convey("Navigation is a no-op mid-transition", func() {
			So(n.Load(ctx, 1), ShouldBeNil)
			dispatcher.busy = true
			dispatcher.began = nil

			So(n.Next(ctx), ShouldBeNil)
			So(n.Previous(ctx), ShouldBeNil)
			So(dispatcher.began, ShouldBeEmpty)
			So(n.Current().ID, ShouldEqual, 1)
		})

		Convey("Load rejects a lesson that does not exist", func() {
			So(n.Load(ctx, 99), ShouldNotBeNil)
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestNavigatorOverlap(t *testing.T) {
	ctx := context.Background()

	Convey("Overlapping navigation requests", t, func() {
		service := &fakeService{
			lessons:  stubLessons(1, 2, 3),
			max:      3,
			fetchErr: map[int]error{},
			block:    make(chan struct{}),
		}
		gate := &fakeGate{access: lesson.Access{Allowed: true}}
		dispatcher := &fakeDispatcher{}
		n := newTestNavigator(service, gate, dispatcher)

		Convey("A second Next during a slow fetch is a no-op", func() {
			done := make(chan error, 1)
			go func() { done <- n.Next(ctx) }()
			So(waitFor(func() bool { return n.inFlight.Load() }), ShouldBeTrue)

			So(n.Next(ctx), ShouldBeNil)
			So(n.Previous(ctx), ShouldBeNil)

			close(service.block)
			So(<-done, ShouldBeNil)

			So(service.calls(), ShouldEqual, 1)
			So(service.updates, ShouldResemble, []int{1})
			So(dispatcher.began, ShouldResemble, []int{1})
		})

		Convey("The flag clears after a navigation finishes", func() {
			close(service.block)
			service.block = nil

			So(n.Next(ctx), ShouldBeNil)
			So(n.Next(ctx), ShouldBeNil)
			So(dispatcher.began, ShouldResemble, []int{1, 2})
		})
	})
}
