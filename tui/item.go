// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/lingoreel-cli/lingoreel/color"
	"github.com/lingoreel-cli/lingoreel/history"
	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/style"
)

// listItem implements the list.Item interface, wrapping domain models for terminal display.
type listItem struct {
	internal interface{}
}

// Title retrieves the primary display text for the list item.
func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case *lesson.Lesson:
		title = fmt.Sprintf("Lesson %d", e.ID)
		if phrase := e.Content.Video.HighlightPhrase; phrase != "" {
			title += " " + style.Faint(phrase)
		}
	case *history.SavedLesson:
		title = fmt.Sprintf("Lesson %d %s", e.LessonID, style.Faint(e.HighlightPhrase))
	case string:
		title = e
	default:
		title = t.FilterValue()
	}

	return
}

// Description retrieves the secondary metadata line for the list item.
func (t *listItem) Description() (description string) {
	switch e := t.internal.(type) {
	case *lesson.Lesson:
		clip := e.Content.Video
		description = fmt.Sprintf("%s • %.0fs clip • %d captions",
			e.Language, clip.Duration(), len(clip.Captions))
	case *history.SavedLesson:
		progress := lipgloss.NewStyle().Foreground(color.Yellow).
			Render(fmt.Sprintf("%.0f%%", e.WatchedPercentage*100))
		if e.WatchedPercentage >= 0.8 {
			progress = lipgloss.NewStyle().Foreground(color.Green).Render("Watched")
		}
		description = fmt.Sprintf("%s • %s", e.Language, progress)
	case string:
		description = ""
	}

	return
}

// FilterValue returns the string used for real-time list filtering and searching.
func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case *lesson.Lesson:
		return fmt.Sprintf("%d %s", e.ID, e.Content.Video.HighlightPhrase)
	case *history.SavedLesson:
		return fmt.Sprintf("%d %s", e.LessonID, e.HighlightPhrase)
	case string:
		return e
	default:
		return ""
	}
}
