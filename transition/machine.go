// Package transition implements the lesson transition state machine. A lesson
// swap walks a fixed phase sequence so that stale player callbacks, premature
// boundary checks, and double-fired navigation can all be rejected by phase
// alone.
package transition

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/mo"
	"github.com/spf13/viper"

	"github.com/lingoreel-cli/lingoreel/caption"
	"github.com/lingoreel-cli/lingoreel/key"
	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/log"
	"github.com/lingoreel-cli/lingoreel/playback"
	"github.com/lingoreel-cli/lingoreel/player"
)

// Phase is the current stage of a lesson transition.
type Phase int

const (
	// PhaseIdle means no lesson is loaded.
	PhaseIdle Phase = iota
	// PhaseUnloading tears down the previous lesson's ephemeral state.
	PhaseUnloading
	// PhaseLoading waits for the player to accept the new video.
	PhaseLoading
	// PhaseSeeking performs the verified initial seek to the clip start.
	PhaseSeeking
	// PhasePlaying is the steady state; playback and gestures are live.
	PhasePlaying
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUnloading:
		return "unloading"
	case PhaseLoading:
		return "loading"
	case PhaseSeeking:
		return "seeking"
	case PhasePlaying:
		return "playing"
	}
	return "unknown"
}

// unloadSettle gives the player a beat to flush callbacks from the outgoing
// video before the new one is loaded.
const unloadSettle = 50 * time.Millisecond

// ErrBusy is returned when a transition is requested while one is running.
var ErrBusy = errors.New("lesson transition already in progress")

// Machine drives lesson swaps through the phase sequence
// unloading, loading, seeking, playing. It is the playback controller's
// phase gate: position reports are ignored until the machine reaches the
// playing phase.
type Machine struct {
	mu    sync.Mutex
	phase Phase

	player     player.Player
	controller *playback.Controller
	captions   *caption.Synchronizer

	pollInterval time.Duration

	// listener streams pause / time-pos / eof events from the player's IPC
	// socket. One listener per socket; it survives lesson swaps because the
	// player process does too.
	listener       *player.EventListener
	listenerSocket string

	onPhase func(Phase)
	sleep   func(time.Duration)
}

// NewMachine wires a transition machine over the player and controller and
// attaches itself as the controller's phase gate.
func NewMachine(p player.Player, c *playback.Controller, captions *caption.Synchronizer) *Machine {
	m := &Machine{
		phase:        PhaseIdle,
		player:       p,
		controller:   c,
		captions:     captions,
		pollInterval: time.Duration(viper.GetInt(key.PlayerPollInterval)) * time.Millisecond,
		sleep:        time.Sleep,
	}
	c.AttachGate(m)
	return m
}

// OnPhase registers a callback fired on every phase change, for status lines.
func (m *Machine) OnPhase(fn func(Phase)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPhase = fn
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Transitioning reports whether a lesson swap is in progress.
func (m *Machine) Transitioning() bool {
	p := m.Phase()
	return p != PhaseIdle && p != PhasePlaying
}

// PhasePlaying reports whether the machine is in the steady playing phase.
func (m *Machine) PhasePlaying() bool {
	return m.Phase() == PhasePlaying
}

// legal lists the allowed forward edges. Any phase may fall back to idle.
var legal = map[Phase][]Phase{
	PhaseIdle:      {PhaseUnloading},
	PhasePlaying:   {PhaseUnloading},
	PhaseUnloading: {PhaseLoading},
	PhaseLoading:   {PhaseSeeking},
	PhaseSeeking:   {PhasePlaying},
}

func (m *Machine) advance(to Phase) error {
	m.mu.Lock()
	from := m.phase

	allowed := to == PhaseIdle
	for _, next := range legal[from] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		m.mu.Unlock()
		return fmt.Errorf("illegal phase transition %s -> %s", from, to)
	}

	m.phase = to
	fn := m.onPhase
	m.mu.Unlock()

	log.Debugf("transition phase %s -> %s", from, to)
	if fn != nil {
		fn(to)
	}
	return nil
}

// fail aborts the transition and drops back to idle.
func (m *Machine) fail(err error) error {
	_ = m.advance(PhaseIdle)
	return err
}

// Begin swaps playback to the given lesson, running all four phases
// synchronously. It returns ErrBusy when called mid-transition and a player
// error when the new video cannot be loaded; seek failures never abort, the
// machine force-advances to playing instead.
func (m *Machine) Begin(l *lesson.Lesson) error {
	if m.Transitioning() {
		return ErrBusy
	}
	if err := m.advance(PhaseUnloading); err != nil {
		return err
	}

	// Unloading: from here every player callback is stale by definition.
	m.controller.StopPolling()
	m.controller.SetIdentity("")
	m.sleep(unloadSettle)

	clip := l.Content.Video
	if err := m.advance(PhaseLoading); err != nil {
		return m.fail(err)
	}
	m.controller.SetClip(clip)
	if m.captions != nil {
		m.captions.SetClip(clip)
	}
	if err := m.player.Load(clip.VideoID, lessonTitle(l), clip.ClipStart); err != nil {
		return m.fail(fmt.Errorf("load lesson video: %w", err))
	}
	m.controller.SetIdentity(clip.VideoID)
	m.ensureListener()

	if err := m.advance(PhaseSeeking); err != nil {
		return m.fail(err)
	}
	if outcome := m.controller.Seeker().Seek(clip.ClipStart, playback.KindUser, mo.Some(true)); outcome != playback.Applied {
		// Force-advance: a lesson stuck on a failed seek-in is worse than a
		// lesson starting a second early.
		log.Warnf("initial seek %s for lesson %d, advancing anyway", outcome, l.ID)
	}

	if err := m.advance(PhasePlaying); err != nil {
		return m.fail(err)
	}
	m.controller.MarkReady()
	m.controller.StartPolling(m.pollInterval)
	return nil
}

// socketed is satisfied by backends that expose an IPC socket for event
// observation. Test fakes do not, which keeps the listener out of unit tests.
type socketed interface {
	Socket() string
}

// ensureListener starts the event listener once the player's socket exists.
// Called after every successful load so a restarted player gets a fresh one.
func (m *Machine) ensureListener() {
	sp, ok := m.player.(socketed)
	if !ok {
		return
	}
	socket := sp.Socket()
	if socket == "" {
		return
	}

	m.mu.Lock()
	current := m.listenerSocket
	old := m.listener
	m.mu.Unlock()

	if old != nil && current == socket {
		return
	}
	if old != nil {
		old.Stop()
	}

	l := player.NewEventListener(socket, m.handleEvent)
	if err := l.Start(); err != nil {
		log.Warnf("player event listener: %v", err)
		return
	}

	m.mu.Lock()
	m.listener = l
	m.listenerSocket = socket
	m.mu.Unlock()
}

// handleEvent routes player property changes into the controller. Events are
// cheap duplicates of what polling observes, except pause flips and
// end-of-file, which polling can only catch late or not at all.
func (m *Machine) handleEvent(property string, data interface{}) {
	switch property {
	case "pause":
		if paused, ok := data.(bool); ok {
			m.controller.SetPlaying(!paused)
		}
	case "time-pos":
		if pos, ok := data.(float64); ok {
			m.controller.HandlePosition(pos, m.controller.Identity())
		}
	case "eof-reached":
		if reached, ok := data.(bool); ok && reached {
			// The player ran off the end of the whole video; treat it as a
			// position report past the clip end so the usual loop-back runs.
			clip := m.controller.Clip()
			m.controller.HandlePosition(clip.ClipEnd+0.1, m.controller.Identity())
		}
	}
}

// Reset drops the machine back to idle, abandoning any in-flight transition.
// Used when playback becomes unrecoverable.
func (m *Machine) Reset() {
	m.controller.StopPolling()
	m.controller.SetIdentity("")
	_ = m.advance(PhaseIdle)
}

func lessonTitle(l *lesson.Lesson) string {
	if l.Content.Video.HighlightPhrase != "" {
		return l.Content.Video.HighlightPhrase
	}
	return l.Language
}
