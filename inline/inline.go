package inline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/log"
)

// Run fetches the lesson catalog, applies the configured filter, and writes
// the result to the output writer as JSON or plain text.
func Run(ctx context.Context, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	max, err := options.Service.MaxLessonID(ctx, options.Language)
	if err != nil {
		return fmt.Errorf("lesson catalog size: %w", err)
	}

	var lessons []*lesson.Lesson
	for id := 1; id <= max; id++ {
		l, err := options.Service.FetchLesson(ctx, id, options.Language)
		if err != nil {
			return fmt.Errorf("fetch lesson %d: %w", id, err)
		}
		if l == nil {
			log.Warnf("lesson %d missing from catalog", id)
			continue
		}
		lessons = append(lessons, l)
	}

	if options.LessonFilter.IsPresent() {
		filter := options.LessonFilter.MustGet()
		lessons, err = filter(lessons)
		if err != nil {
			return err
		}
	}

	if options.Json {
		return writeJson(options.Out, lessons, options)
	}

	for _, l := range lessons {
		clip := l.Content.Video
		fmt.Fprintf(options.Out, "%d\t%s\t%s\t%.1f-%.1f\n",
			l.ID, l.Language, clip.HighlightPhrase, clip.ClipStart, clip.ClipEnd)
	}

	return nil
}

func writeJson(out io.Writer, lessons []*lesson.Lesson, options *Options) error {
	data, err := asJson(lessons, options.Language, options.IncludeCaptions)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
