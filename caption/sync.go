package caption

import (
	"github.com/samber/mo"
	"github.com/spf13/viper"

	"github.com/lingoreel-cli/lingoreel/key"
	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/log"
)

// ReplayState tracks the phrase-replay pedagogy for the current clip. The
// highlighted caption is replayed when the learner first plays through the
// clip, up to a per-clip repeat limit; later playthroughs run uninterrupted.
type ReplayState struct {
	FirstPlaythrough     bool
	InHighlightedSection bool
	ShouldRepeat         bool
	RepeatCount          int
}

// Synchronizer resolves the active caption for a clip-relative time and
// drives phrase replay by re-seeking to the start of the highlighted caption
// when playback leaves it.
type Synchronizer struct {
	clip    lesson.Clip
	enabled bool
	limit   int

	replay       ReplayState
	active       mo.Option[lesson.Caption]
	sectionStart float64

	seek func(relative float64)
}

// NewSynchronizer builds a synchronizer wired to a re-seek callback. The
// callback receives a clip-relative target in seconds.
func NewSynchronizer(seek func(relative float64)) *Synchronizer {
	return &Synchronizer{
		enabled: viper.GetBool(key.ReplayEnabled),
		limit:   viper.GetInt(key.ReplayLimit),
		seek:    seek,
	}
}

// SetClip installs a new clip and resets all replay state.
func (s *Synchronizer) SetClip(clip lesson.Clip) {
	s.clip = clip
	s.active = mo.None[lesson.Caption]()
	s.sectionStart = 0
	s.replay = ReplayState{FirstPlaythrough: true}
}

// EndFirstPlaythrough marks the clip as seen once. Wire it to the playback
// controller's loop callback so replay stops after the first full pass.
func (s *Synchronizer) EndFirstPlaythrough() {
	s.replay.FirstPlaythrough = false
	s.replay.ShouldRepeat = false
	s.replay.InHighlightedSection = false
}

// Replay exposes the current replay state, mainly for rendering.
func (s *Synchronizer) Replay() ReplayState {
	return s.replay
}

// Active returns the caption resolved by the last Update call.
func (s *Synchronizer) Active() mo.Option[lesson.Caption] {
	return s.active
}

// ActiveCaption finds the caption covering the given clip-relative time.
// Caption ranges are half-open so back-to-back captions never both match.
func ActiveCaption(captions []lesson.Caption, relative float64) mo.Option[lesson.Caption] {
	for _, c := range captions {
		if c.Contains(relative) {
			return mo.Some(c)
		}
	}
	return mo.None[lesson.Caption]()
}

// Update resolves the active caption for the given clip-relative time and
// advances the phrase-replay state machine. It returns the active caption,
// if any.
func (s *Synchronizer) Update(relative float64) mo.Option[lesson.Caption] {
	previous := s.active
	current := ActiveCaption(s.clip.Captions, relative)
	s.active = current

	if !s.enabled {
		return current
	}

	wasHighlighted := s.replay.InHighlightedSection
	nowHighlighted := false
	if caption, ok := current.Get(); ok {
		nowHighlighted = IsHighlighted(caption.TargetText, s.clip.HighlightPhrase)
	}

	switch {
	case nowHighlighted && !wasHighlighted:
		s.enterHighlighted(current)
	case !nowHighlighted && wasHighlighted:
		s.leaveHighlighted(previous)
	}

	return current
}

func (s *Synchronizer) enterHighlighted(current mo.Option[lesson.Caption]) {
	s.replay.InHighlightedSection = true
	if caption, ok := current.Get(); ok {
		s.sectionStart = caption.LocalStart
	}
	if s.replay.FirstPlaythrough && s.replay.RepeatCount < s.limit {
		s.replay.ShouldRepeat = true
	}
}

// leaveHighlighted fires the replay seek when one is armed. Leaving covers
// both advancing into the next caption and falling into a caption gap.
func (s *Synchronizer) leaveHighlighted(previous mo.Option[lesson.Caption]) {
	s.replay.InHighlightedSection = false

	if !s.replay.ShouldRepeat {
		return
	}
	s.replay.ShouldRepeat = false
	s.replay.RepeatCount++

	target := s.sectionStart
	if caption, ok := previous.Get(); ok {
		target = caption.LocalStart
	}

	log.Infof("replaying highlighted caption, repeat %d of %d", s.replay.RepeatCount, s.limit)
	if s.seek != nil {
		s.seek(target)
	}
}
