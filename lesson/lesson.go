// Package lesson defines the domain models and collaborator interfaces for lesson content delivery.
package lesson

import (
	"time"

	"github.com/lingoreel-cli/lingoreel/log"
)

// Lesson pairs a clipped video segment with bilingual captions and a highlighted target phrase.
// A lesson is replaced wholesale on every transition and never mutated in place.
type Lesson struct {
	ID        int       `json:"id"`
	Language  string    `json:"language"`
	Content   Content   `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Content holds the playable material of a lesson.
type Content struct {
	Video Clip `json:"video"`
}

// Clip is the bounded sub-interval of a longer external video that constitutes
// one lesson's playable content. Times are absolute seconds on the external
// video's timeline.
type Clip struct {
	VideoID         string    `json:"video_id"`
	ClipStart       float64   `json:"clip_start"`
	ClipEnd         float64   `json:"clip_end"`
	HighlightPhrase string    `json:"highlight_phrase"`
	Captions        []Caption `json:"captions"`
}

// Caption is a single bilingual subtitle span, expressed in clip-relative time.
// Captions are assumed sorted and non-overlapping; this is not enforced at runtime.
type Caption struct {
	TargetText string  `json:"target_text"`
	NativeText string  `json:"native_text"`
	LocalStart float64 `json:"local_start"`
	LocalEnd   float64 `json:"local_end"`
}

// Duration returns the playable length of the clip in seconds.
func (c Clip) Duration() float64 {
	return c.ClipEnd - c.ClipStart
}

// RelativeTime converts an absolute timeline position into clip-relative time,
// clamped to [0, Duration].
func (c Clip) RelativeTime(absolute float64) float64 {
	rel := absolute - c.ClipStart
	if rel < 0 {
		return 0
	}
	if d := c.Duration(); rel > d && d > 0 {
		return d
	}
	return rel
}

// AbsoluteTime converts a clip-relative position into the external video's
// absolute timeline.
func (c Clip) AbsoluteTime(relative float64) float64 {
	return c.ClipStart + relative
}

// Validate reports whether the clip bounds are coherent. An inverted interval
// is logged and tolerated: playback proceeds with the given values.
func (c Clip) Validate() bool {
	if c.ClipEnd <= c.ClipStart {
		log.Warnf("clip %s has invalid bounds [%f, %f], proceeding anyway", c.VideoID, c.ClipStart, c.ClipEnd)
		return false
	}
	return true
}

// Caption containment uses a half-open check on the end so that adjacent
// spans never both claim the boundary instant.
func (c Caption) Contains(relative float64) bool {
	return relative >= c.LocalStart && relative < c.LocalEnd
}
