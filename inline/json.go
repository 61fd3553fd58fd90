package inline

import (
	"encoding/json"

	"github.com/lingoreel-cli/lingoreel/lesson"
)

// Entry is one lesson in the machine-readable output.
type Entry struct {
	// Language is the lesson's target language.
	Language string `json:"language"`
	// Lesson is the full lesson object from the content service.
	Lesson *lesson.Lesson `json:"lesson"`
	// CaptionCount is the number of caption spans in the lesson's clip.
	CaptionCount int `json:"caption_count"`
}

type Output struct {
	Language string   `json:"language"`
	Result   []*Entry `json:"result"`
}

func asJson(lessons []*lesson.Lesson, language string, includeCaptions bool) ([]byte, error) {
	var result = make([]*Entry, len(lessons))
	for i, l := range lessons {
		entry := &Entry{
			Language:     l.Language,
			Lesson:       l,
			CaptionCount: len(l.Content.Video.Captions),
		}
		if !includeCaptions {
			stripped := *l
			stripped.Content.Video.Captions = nil
			entry.Lesson = &stripped
		}
		result[i] = entry
	}

	return json.Marshal(&Output{
		Language: language,
		Result:   result,
	})
}
