// Package playback implements the clip playback controller and its seek executor.
//
// The external player behaves like an eventually-consistent remote: a seek may
// land late, land near a keyframe, or be reported against a stale position.
// Everything in this package exists to force that player to behave like a
// bounded, loopable sub-clip of a much longer video.
package playback

import (
	"sync/atomic"
	"time"

	"github.com/lingoreel-cli/lingoreel/key"
	"github.com/lingoreel-cli/lingoreel/log"
	"github.com/lingoreel-cli/lingoreel/player"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Kind distinguishes user-initiated seeks from automatic boundary corrections.
// Boundary corrections use a longer throttle window so they cannot fight the
// player during a slow seek-in.
type Kind int

const (
	KindUser Kind = iota
	KindBoundary
)

// Outcome is the result of a seek request.
type Outcome int

const (
	// Applied means the seek landed within tolerance of the target.
	Applied Outcome = iota
	// Unverified means the seek was issued but the read-back position never
	// converged; playback continues from wherever the player actually is.
	Unverified
	// Throttled means the minimum inter-seek interval had not elapsed.
	Throttled
	// Busy means another seek was already in flight.
	Busy
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Unverified:
		return "unverified"
	case Throttled:
		return "throttled"
	case Busy:
		return "busy"
	}
	return "unknown"
}

const (
	stabilizeDelay      = 50 * time.Millisecond
	completionDelay     = 100 * time.Millisecond
	firstSeekDelay      = 300 * time.Millisecond
	retryStabilizeDelay = 300 * time.Millisecond
)

// Seeker issues verified seeks against the external player. It guarantees at
// most one seek in flight system-wide and enforces a minimum interval between
// consecutive accepted seeks.
type Seeker struct {
	player player.Player

	inFlight atomic.Bool

	userThrottle     time.Duration
	boundaryThrottle time.Duration
	tolerance        float64

	lastSeek  time.Time
	firstSeek bool

	// Injectable clocks keep the executor testable without real delays.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewSeeker creates a seek executor over the given player, configured from
// the playback.* settings.
func NewSeeker(p player.Player) *Seeker {
	return &Seeker{
		player:           p,
		userThrottle:     time.Duration(viper.GetInt(key.PlaybackSeekThrottle)) * time.Millisecond,
		boundaryThrottle: time.Duration(viper.GetInt(key.PlaybackLoopThrottle)) * time.Millisecond,
		tolerance:        viper.GetFloat64(key.PlaybackSeekTolerance),
		firstSeek:        true,
		now:              time.Now,
		sleep:            time.Sleep,
	}
}

// ResetLesson rearms the first-seek grace delay and clears the throttle
// window. Called whenever a new lesson's clip is installed.
func (s *Seeker) ResetLesson() {
	s.firstSeek = true
	s.lastSeek = time.Time{}
}

// InFlight reports whether a seek is currently being executed.
func (s *Seeker) InFlight() bool {
	return s.inFlight.Load()
}

func (s *Seeker) throttleFor(kind Kind) time.Duration {
	if kind == KindBoundary {
		return s.boundaryThrottle
	}
	return s.userThrottle
}

// Seek moves the player to target (absolute seconds), verifying the result
// and retrying once on mismatch. The player's paused state is restored to
// what it was before the seek unless resume explicitly requests a new state.
//
// Failures degrade, never escalate: an unverified seek is logged and playback
// continues from the player's actual position.
func (s *Seeker) Seek(target float64, kind Kind, resume mo.Option[bool]) Outcome {
	if !s.inFlight.CompareAndSwap(false, true) {
		return Busy
	}
	defer s.inFlight.Store(false)

	if !s.lastSeek.IsZero() && s.now().Sub(s.lastSeek) < s.throttleFor(kind) {
		return Throttled
	}
	s.lastSeek = s.now()

	wasPlaying := false
	if paused, err := s.player.Paused(); err == nil {
		wasPlaying = !paused
	}

	// Pausing first avoids a race between the seek and ongoing playback
	// position reporting.
	if wasPlaying {
		if err := s.player.SetPaused(true); err != nil {
			log.Warnf("seek: pause before seek failed: %v", err)
		}
		s.sleep(stabilizeDelay)
	}

	verified := s.issueAndVerify(target, completionWait(s.firstSeek))
	s.firstSeek = false

	if !verified {
		// Exactly one retry with a longer stabilization delay.
		s.sleep(retryStabilizeDelay)
		verified = s.issueAndVerify(target, retryStabilizeDelay)
	}

	playAfter := resume.OrElse(wasPlaying)
	if err := s.player.SetPaused(!playAfter); err != nil {
		log.Warnf("seek: restore playing state failed: %v", err)
	}

	if !verified {
		log.Warnf("seek to %.2f could not be verified, continuing from actual position", target)
		return Unverified
	}
	return Applied
}

func completionWait(first bool) time.Duration {
	if first {
		return firstSeekDelay
	}
	return completionDelay
}

// issueAndVerify performs a single seek attempt and reads the position back.
func (s *Seeker) issueAndVerify(target float64, wait time.Duration) bool {
	if err := s.player.SeekTo(target, true); err != nil {
		log.Warnf("seek to %.2f failed: %v", target, err)
		return false
	}

	s.sleep(wait)

	pos, err := s.player.CurrentTime()
	if err != nil {
		log.Warnf("seek verification read failed: %v", err)
		return false
	}

	deviation := pos - target
	if deviation < 0 {
		deviation = -deviation
	}
	return deviation <= s.tolerance
}
