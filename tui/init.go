// Package tui provides the primary terminal user interface implementation.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lingoreel-cli/lingoreel/history"
)

// Init triggers the initial lesson catalog load.
func (b *statefulBubble) Init() tea.Cmd {
	if b.state == historyState {
		cmds := []tea.Cmd{
			b.spinnerC.Tick,
			b.waitForLessonStarted(),
			b.waitForError(),
			b.notifierCmd(),
		}

		// Auto-resume the most recent record once, then behave as a plain list.
		if b.options != nil && b.options.Continue {
			b.options.Continue = false
			if record, err := history.Last(); err == nil && record != nil {
				b.progressStatus = "Resuming"
				cmds = append(cmds, b.startLoading(), b.startLesson(record.LessonID))
			}
		}

		return tea.Batch(cmds...)
	}

	b.setState(loadingState)
	b.progressStatus = "Fetching lessons"
	return tea.Batch(
		b.spinnerC.Tick,
		b.startLoading(),
		b.loadLessons(),
		b.waitForLessonsLoaded(),
		b.waitForLessonStarted(),
		b.waitForError(),
		b.notifierCmd(),
	)
}
