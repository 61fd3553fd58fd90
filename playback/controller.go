package playback

import (
	"sync"
	"time"

	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/log"
	"github.com/lingoreel-cli/lingoreel/player"
	"github.com/lingoreel-cli/lingoreel/util"
	"github.com/samber/mo"
)

// preRollSlack is how far before the clip start a reported position may drift
// before a corrective seek is issued.
const preRollSlack = 0.5

// PhaseGate exposes the transition machine's phase to the controller without
// a package cycle. Boundary enforcement and position handling only act while
// the machine reports the playing phase.
type PhaseGate interface {
	// Transitioning reports whether a lesson swap is in progress.
	Transitioning() bool
	// PhasePlaying reports whether the machine has reached the playing phase.
	PhasePlaying() bool
}

// steadyGate is the rest-state gate used before any transition machine is attached.
type steadyGate struct{}

func (steadyGate) Transitioning() bool { return false }
func (steadyGate) PhasePlaying() bool  { return true }

// Controller owns the single player handle and forces it to behave like a
// bounded, loopable sub-clip. All other components interact with the player
// exclusively through this controller.
type Controller struct {
	mu sync.Mutex

	player player.Player
	seeker *Seeker
	gate   PhaseGate

	clip  lesson.Clip
	state State

	// videoToken is the external video id of the lesson currently believed
	// to be loaded in the player. Position reports carrying a different id
	// are stale and discarded (or adopted mid-transition).
	videoToken string

	firstPlaythrough bool

	// onLoop is invoked after every end-of-clip loop back to the start.
	onLoop func(firstPlaythrough bool)

	pollStop  chan struct{}
	pollEvery time.Duration
}

// NewController creates a controller over the given player handle.
func NewController(p player.Player) *Controller {
	return &Controller{
		player: p,
		seeker: NewSeeker(p),
		gate:   steadyGate{},
	}
}

// AttachGate installs the transition machine's phase gate.
func (c *Controller) AttachGate(g PhaseGate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = g
}

// OnLoop registers a callback fired after each end-of-clip loop.
func (c *Controller) OnLoop(fn func(firstPlaythrough bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLoop = fn
}

// Seeker exposes the seek executor for the transition machine's initial seek-in.
func (c *Controller) Seeker() *Seeker {
	return c.seeker
}

// SetClip installs a new lesson's clip and resets all per-lesson playback
// state. Invalid bounds are logged, not corrected.
func (c *Controller) SetClip(clip lesson.Clip) {
	c.mu.Lock()
	defer c.mu.Unlock()

	clip.Validate()
	c.clip = clip
	c.state = State{}
	c.firstPlaythrough = true
	c.seeker.ResetLesson()
}

// Clip returns the active clip.
func (c *Controller) Clip() lesson.Clip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clip
}

// SetIdentity records the external video id the player has reported readiness
// for. An empty id marks the unloading window during which every callback is
// stale by definition.
func (c *Controller) SetIdentity(videoID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.videoToken = videoID
}

// Identity returns the current video identity token.
func (c *Controller) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.videoToken
}

// MarkReady flags playback as ready and playing; used when the transition
// machine force-advances after an unrecoverable player error.
func (c *Controller) MarkReady() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Ready = true
	c.state.Playing = true
}

// State returns a snapshot of the playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Progress returns playback completion in [0, 1], guarding invalid clip bounds.
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.progress(c.clip.Duration())
}

// FirstPlaythrough reports whether the clip has not yet looped.
func (c *Controller) FirstPlaythrough() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.firstPlaythrough
}

// HandlePosition is the periodic position-report entry point. A report is
// ignored while a seek is in flight, when its video identity is stale, and
// outside the playing phase. Mid-transition identity mismatches are adopted
// rather than discarded: a late ready callback is the only signal we get.
func (c *Controller) HandlePosition(absolute float64, videoID string) {
	if c.seeker.InFlight() {
		return
	}

	c.mu.Lock()

	if videoID != c.videoToken {
		if !c.gate.Transitioning() {
			c.mu.Unlock()
			return
		}
		// Recovery path for late player callbacks during a transition.
		c.videoToken = videoID
	}

	if !c.gate.PhasePlaying() {
		c.mu.Unlock()
		return
	}

	clip := c.clip
	wasPlaying := c.state.Playing
	c.state.Ready = true
	c.state.RelativeTime = clip.RelativeTime(absolute)

	// Pre-roll boundary: the player started outside the intended clip.
	if absolute < clip.ClipStart-preRollSlack {
		c.mu.Unlock()
		c.enforceBoundary(clip, wasPlaying, false)
		return
	}

	// End-of-clip boundary: loop back for the seamless short-form format.
	if absolute >= clip.ClipEnd {
		onLoop := c.onLoop
		c.mu.Unlock()
		if c.enforceBoundary(clip, wasPlaying, true) {
			c.mu.Lock()
			first := c.firstPlaythrough
			c.firstPlaythrough = false
			c.mu.Unlock()
			if onLoop != nil {
				onLoop(first)
			}
		}
		return
	}

	c.mu.Unlock()
}

// enforceBoundary seeks back to the clip start, resuming only if playback was
// already running. Reports whether the corrective seek was actually issued.
func (c *Controller) enforceBoundary(clip lesson.Clip, resume bool, loop bool) bool {
	outcome := c.seeker.Seek(clip.ClipStart, KindBoundary, mo.Some(resume))
	if outcome == Throttled || outcome == Busy {
		return false
	}

	c.mu.Lock()
	c.state.RelativeTime = 0
	c.mu.Unlock()

	if loop {
		log.Debugf("looped clip %s back to start (%s)", clip.VideoID, outcome)
	} else {
		log.Debugf("pre-roll correction for clip %s (%s)", clip.VideoID, outcome)
	}
	return true
}

// SeekTo seeks to a clip-relative position from UI controls. The state is
// updated optimistically; the next position report reconciles it.
func (c *Controller) SeekTo(relative float64) Outcome {
	c.mu.Lock()
	clip := c.clip
	relative = util.Clamp(relative, 0, clip.Duration())
	c.mu.Unlock()

	outcome := c.seeker.Seek(clip.AbsoluteTime(relative), KindUser, mo.None[bool]())
	if outcome == Applied || outcome == Unverified {
		c.mu.Lock()
		c.state.RelativeTime = relative
		c.mu.Unlock()
	}
	return outcome
}

// SeekByOffset seeks relative to the current position. A target outside
// [0, duration] in either direction restarts the clip from the beginning.
func (c *Controller) SeekByOffset(delta float64) Outcome {
	c.mu.Lock()
	target := c.state.RelativeTime + delta
	duration := c.clip.Duration()
	c.mu.Unlock()

	if target < 0 || target > duration {
		target = 0
	}
	return c.SeekTo(target)
}

// TogglePause flips the player's paused state and mirrors it locally.
func (c *Controller) TogglePause() error {
	c.mu.Lock()
	playing := c.state.Playing
	c.mu.Unlock()

	if err := c.player.SetPaused(playing); err != nil {
		return err
	}

	c.mu.Lock()
	c.state.Playing = !playing
	c.mu.Unlock()

	if !playing {
		c.resumePolling()
	}
	return nil
}

// SetPlaying mirrors an externally reported play/pause change.
func (c *Controller) SetPlaying(playing bool) {
	c.mu.Lock()
	c.state.Playing = playing
	c.mu.Unlock()

	if playing {
		c.resumePolling()
	}
}

// resumePolling brings the position loop back after a pause ends. The loop
// self-terminates on pause, so every return to the playing state restarts it
// unless a transition owns the player.
func (c *Controller) resumePolling() {
	c.mu.Lock()
	every := c.pollEvery
	gate := c.gate
	c.mu.Unlock()

	if gate.Transitioning() || !gate.PhasePlaying() {
		return
	}
	c.StartPolling(every)
}

// StartPolling begins the periodic position-check loop. The loop
// self-terminates when playback stops or a transition begins, and is
// restarted by the transition machine or by resumePolling.
func (c *Controller) StartPolling(interval time.Duration) {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	c.mu.Lock()
	c.pollEvery = interval
	if c.pollStop != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	c.pollStop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.mu.Lock()
				playing := c.state.Playing
				transitioning := c.gate.Transitioning()
				token := c.videoToken
				if !playing || transitioning {
					c.pollStop = nil
					c.mu.Unlock()
					return
				}
				c.mu.Unlock()

				pos, err := c.player.CurrentTime()
				if err != nil {
					continue
				}
				c.HandlePosition(pos, token)
			}
		}
	}()
}

// StopPolling halts the position-check loop if it is running.
func (c *Controller) StopPolling() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pollStop != nil {
		close(c.pollStop)
		c.pollStop = nil
	}
}
