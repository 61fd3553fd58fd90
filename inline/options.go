// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/lingoreel-cli/lingoreel/caption"
	"github.com/lingoreel-cli/lingoreel/lesson"
)

// LessonFilter reduces a fetched lesson list to the subset to output.
type LessonFilter func([]*lesson.Lesson) ([]*lesson.Lesson, error)

type Options struct {
	Out             io.Writer
	Service         lesson.ContentService
	Language        string
	Json            bool
	IncludeCaptions bool
	LessonFilter    mo.Option[LessonFilter]
}

// ParseLessonFilter parses the string description of a lesson filter.
// Format: "first", "last", "all", "1-5", "@phrase@", "5"
func ParseLessonFilter(description string) (LessonFilter, error) {
	if description == "first" {
		return func(lessons []*lesson.Lesson) ([]*lesson.Lesson, error) {
			if len(lessons) == 0 {
				return lessons, nil
			}
			return lessons[:1], nil
		}, nil
	}
	if description == "last" {
		return func(lessons []*lesson.Lesson) ([]*lesson.Lesson, error) {
			if len(lessons) == 0 {
				return lessons, nil
			}
			return lessons[len(lessons)-1:], nil
		}, nil
	}
	if description == "all" || description == "" {
		return func(lessons []*lesson.Lesson) ([]*lesson.Lesson, error) {
			return lessons, nil
		}, nil
	}

	// Range: "1-5", inclusive lesson ids
	if strings.Contains(description, "-") {
		parts := strings.Split(description, "-")
		if len(parts) == 2 {
			from, err1 := strconv.Atoi(parts[0])
			to, err2 := strconv.Atoi(parts[1])
			if err1 == nil && err2 == nil {
				return func(lessons []*lesson.Lesson) ([]*lesson.Lesson, error) {
					return lo.Filter(lessons, func(l *lesson.Lesson, _ int) bool {
						return l.ID >= from && l.ID <= to
					}), nil
				}, nil
			}
		}
	}

	// Highlight phrase match: "@text@", accent and case insensitive
	if strings.HasPrefix(description, "@") && strings.HasSuffix(description, "@") && len(description) > 1 {
		sub := description[1 : len(description)-1]
		return func(lessons []*lesson.Lesson) ([]*lesson.Lesson, error) {
			return lo.Filter(lessons, func(l *lesson.Lesson, _ int) bool {
				return caption.FuzzyContains(l.Content.Video.HighlightPhrase, sub)
			}), nil
		}, nil
	}

	// Single lesson id: "5"
	if id, err := strconv.Atoi(description); err == nil {
		return func(lessons []*lesson.Lesson) ([]*lesson.Lesson, error) {
			return lo.Filter(lessons, func(l *lesson.Lesson, _ int) bool {
				return l.ID == id
			}), nil
		}, nil
	}

	return nil, fmt.Errorf("invalid lesson filter: %s", description)
}
