package playback

// State is the UI-facing projection of clip playback. It is mutated only by
// the Controller; relative time is always clamped to [0, clip duration].
type State struct {
	Playing      bool
	Ready        bool
	RelativeTime float64
}

// progress returns RelativeTime normalized to [0, 1] over the given duration.
// A zero or negative duration (invalid clip bounds are tolerated upstream)
// yields 0 rather than dividing by zero.
func (s State) progress(duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	p := s.RelativeTime / duration
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
