package history

import (
	"fmt"
	"time"

	"github.com/lingoreel-cli/lingoreel/lesson"
)

// SavedLesson is a single watch record preserved in the learner's history.
type SavedLesson struct {
	LessonID          int       `json:"lesson_id"`
	Language          string    `json:"language"`
	VideoID           string    `json:"video_id"`
	HighlightPhrase   string    `json:"highlight_phrase"`
	WatchedPercentage float64   `json:"watched_percentage"`
	LastWatchedAt     time.Time `json:"last_watched_at"`
}

func (s *SavedLesson) encode() string {
	return fmt.Sprintf("%s/%d", s.Language, s.LessonID)
}

func (s *SavedLesson) String() string {
	return fmt.Sprintf("%s lesson %d : %.0f%%", s.Language, s.LessonID, s.WatchedPercentage*100)
}

func newSavedLesson(l *lesson.Lesson) *SavedLesson {
	return &SavedLesson{
		LessonID:        l.ID,
		Language:        l.Language,
		VideoID:         l.Content.Video.VideoID,
		HighlightPhrase: l.Content.Video.HighlightPhrase,
		LastWatchedAt:   time.Now(),
	}
}
