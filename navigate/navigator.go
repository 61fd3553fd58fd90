// Package navigate moves between lessons. The navigator decides which lesson
// plays next, consults the access gate, persists the learner's position, and
// hands the chosen lesson to the transition machine.
package navigate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spf13/viper"

	offline "github.com/lingoreel-cli/lingoreel/internal/sync"
	"github.com/lingoreel-cli/lingoreel/key"
	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/log"
	"github.com/lingoreel-cli/lingoreel/open"
	"github.com/lingoreel-cli/lingoreel/transition"
)

// Dispatcher starts a lesson transition. Implemented by transition.Machine.
type Dispatcher interface {
	Begin(l *lesson.Lesson) error
	Transitioning() bool
}

// Navigator walks the lesson sequence. Next wraps past the last lesson back
// to the first; Previous clamps at the first. Navigation is a no-op while a
// transition is in flight or another navigation is still fetching, so a
// double-fired gesture moves one lesson, not two.
type Navigator struct {
	mu       sync.Mutex
	inFlight atomic.Bool

	service    lesson.ContentService
	gate       lesson.AccessGate
	dispatcher Dispatcher

	language string
	userID   string

	current *lesson.Lesson

	// notify feeds the status line; openURL performs the paywall redirect.
	notify  func(string)
	openURL func(string) error
}

// NewNavigator builds a navigator over the content service and access gate.
func NewNavigator(service lesson.ContentService, gate lesson.AccessGate, dispatcher Dispatcher) *Navigator {
	return &Navigator{
		service:    service,
		gate:       gate,
		dispatcher: dispatcher,
		language:   viper.GetString(key.ContentLanguage),
		userID:     viper.GetString(key.ContentUserID),
		notify:     func(string) {},
		openURL:    open.Start,
	}
}

// OnNotify registers the status-line sink.
func (n *Navigator) OnNotify(fn func(string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if fn != nil {
		n.notify = fn
	}
}

// Current returns the lesson currently playing, or nil before the first load.
func (n *Navigator) Current() *lesson.Lesson {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Load fetches a specific lesson and dispatches it. Used for the initial
// lesson and for resuming a saved position.
func (n *Navigator) Load(ctx context.Context, id int) error {
	l, err := n.service.FetchLesson(ctx, id, n.language)
	if err != nil {
		return fmt.Errorf("fetch lesson %d: %w", id, err)
	}
	if l == nil {
		return fmt.Errorf("lesson %d does not exist", id)
	}
	return n.dispatch(ctx, l)
}

// Next advances to the following lesson, wrapping past the last lesson back
// to lesson 1. A fetch failure falls back to lesson 1; if that also fails the
// error is surfaced. The access gate is consulted first: a denial triggers
// the redirect side effect and changes no state.
func (n *Navigator) Next(ctx context.Context) error {
	// The machine only reports transitioning once Begin runs, so a local
	// flag covers the fetch window before dispatch.
	if !n.inFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer n.inFlight.Store(false)

	if n.dispatcher.Transitioning() {
		return nil
	}

	access, err := n.gate.CheckAccess(ctx, n.userID)
	if err != nil {
		// An unreachable gate never blocks the learner.
		log.Warnf("access gate unreachable: %v", err)
		access.Allowed = true
	}
	if !access.Allowed {
		n.redirect(access.RedirectURL)
		return nil
	}

	candidate := n.currentID() + 1
	max, err := n.service.MaxLessonID(ctx, n.language)
	if err != nil {
		log.Warnf("max lesson id lookup failed: %v", err)
	} else if candidate > max {
		candidate = 1
	}

	l, err := n.service.FetchLesson(ctx, candidate, n.language)
	if err != nil || l == nil {
		if err != nil {
			log.Warnf("fetch lesson %d failed: %v, falling back to lesson 1", candidate, err)
		}
		l, err = n.service.FetchLesson(ctx, 1, n.language)
		if err != nil {
			return fmt.Errorf("fetch fallback lesson: %w", err)
		}
		if l == nil {
			return fmt.Errorf("no lessons available for language %q", n.language)
		}
	}

	return n.dispatch(ctx, l)
}

// Previous steps back one lesson, clamping at lesson 1. A missing or
// unfetchable candidate aborts in place and keeps the current lesson playing.
func (n *Navigator) Previous(ctx context.Context) error {
	if !n.inFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer n.inFlight.Store(false)

	if n.dispatcher.Transitioning() {
		return nil
	}

	current := n.currentID()
	if current <= 1 {
		n.notify("already at the first lesson")
		return nil
	}

	candidate := current - 1
	l, err := n.service.FetchLesson(ctx, candidate, n.language)
	if err != nil || l == nil {
		if err != nil {
			log.Warnf("fetch lesson %d failed: %v", candidate, err)
		}
		n.notify(fmt.Sprintf("lesson %d is unavailable", candidate))
		return nil
	}

	return n.dispatch(ctx, l)
}

func (n *Navigator) currentID() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return 0
	}
	return n.current.ID
}

// dispatch persists the lesson pointer, updates the local cursor, and starts
// the transition. The pointer is saved before the transition so a crash
// mid-swap resumes on the lesson the learner chose, not the one they left.
func (n *Navigator) dispatch(ctx context.Context, l *lesson.Lesson) error {
	if err := n.service.UpdateCurrentLesson(ctx, n.userID, l.ID, n.language); err != nil {
		log.Warnf("persist lesson pointer: %v", err)
		if err := offline.QueueFailure(n.userID, l.ID, n.language); err != nil {
			log.Warnf("queue lesson pointer for retry: %v", err)
		}
	}

	n.mu.Lock()
	n.current = l
	notify := n.notify
	n.mu.Unlock()

	if err := n.dispatcher.Begin(l); err != nil {
		if err == transition.ErrBusy {
			return nil
		}
		return fmt.Errorf("start lesson %d: %w", l.ID, err)
	}

	notify(fmt.Sprintf("lesson %d", l.ID))
	return nil
}

func (n *Navigator) redirect(url string) {
	n.mu.Lock()
	notify := n.notify
	openURL := n.openURL
	n.mu.Unlock()

	notify("upgrade required to continue")
	if url == "" {
		return
	}
	if err := openURL(url); err != nil {
		log.Warnf("open redirect url: %v", err)
	}
}
