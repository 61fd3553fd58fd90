// Package tui provides the primary terminal user interface implementation.
package tui

import (
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lingoreel-cli/lingoreel/gesture"
	"github.com/lingoreel-cli/lingoreel/history"
	"github.com/lingoreel-cli/lingoreel/internal/ui"
	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/log"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil

	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}
		return b.updateKey(msg)

	case tea.MouseMsg:
		return b.updateMouse(msg)

	case []*lesson.Lesson:
		cmd := b.stopLoading()
		items := make([]list.Item, 0, len(msg))
		for _, l := range msg {
			items = append(items, &listItem{internal: l})
		}
		setCmd := b.lessonsC.SetItems(items)
		if b.state == loadingState {
			b.newState(lessonsState)
		}
		return b, tea.Batch(cmd, setCmd, b.waitForLessonsLoaded())

	case *lesson.Lesson:
		b.newState(watchState)
		return b, tea.Batch(b.waitForLessonStarted(), tick())

	case string:
		cmd := b.notifier.Update(msg)
		return b, tea.Batch(cmd, b.notifierCmd())

	case ui.ClearNotificationMsg:
		return b, b.notifier.Update(msg)

	case error:
		log.Error(msg)
		b.stopLoading()
		b.raiseError(msg)
		return b, b.waitForError()

	case tickMsg:
		if b.state != watchState {
			return b, nil
		}
		state := b.controller.State()
		b.captions.Update(state.RelativeTime)
		return b, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd

	case progress.FrameMsg:
		model, cmd := b.progressC.Update(msg)
		b.progressC = model.(progress.Model)
		return b, cmd
	}

	return b.updateLists(msg)
}

// updateKey routes key presses based on the active state.
func (b *statefulBubble) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch b.state {
	case loadingState:
		if bubblesKey.Matches(msg, b.keymap.back) {
			b.previousState()
		}
		return b, nil

	case historyState:
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if item, ok := b.historyC.SelectedItem().(*listItem); ok {
				if record, ok := item.internal.(*history.SavedLesson); ok {
					b.progressStatus = "Resuming"
					return b, b.startLesson(record.LessonID)
				}
			}
		case bubblesKey.Matches(msg, b.keymap.remove):
			if item, ok := b.historyC.SelectedItem().(*listItem); ok {
				if record, ok := item.internal.(*history.SavedLesson); ok {
					if err := history.Remove(record); err != nil {
						log.Warnf("remove history record: %v", err)
					}
					b.historyC.RemoveItem(b.historyC.Index())
				}
			}
			return b, nil
		case bubblesKey.Matches(msg, b.keymap.back):
			if len(b.lessonsC.Items()) == 0 {
				b.setState(loadingState)
				b.progressStatus = "Fetching lessons"
				return b, tea.Batch(b.startLoading(), b.loadLessons(), b.waitForLessonsLoaded())
			}
			b.newState(lessonsState)
			return b, nil
		}

	case lessonsState:
		if bubblesKey.Matches(msg, b.keymap.confirm) {
			if item, ok := b.lessonsC.SelectedItem().(*listItem); ok {
				if l, ok := item.internal.(*lesson.Lesson); ok {
					b.progressStatus = "Starting"
					return b, b.startLesson(l.ID)
				}
			}
		}

	case watchState:
		return b.updateWatchKey(msg)

	case errorState:
		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			b.previousState()
			return b, nil
		case bubblesKey.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		}
	}

	return b.updateLists(msg)
}

// updateWatchKey handles playback controls on the watch screen.
func (b *statefulBubble) updateWatchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case bubblesKey.Matches(msg, b.keymap.playPause):
		if err := b.controller.TogglePause(); err != nil {
			log.Warnf("toggle pause: %v", err)
		}

	case bubblesKey.Matches(msg, b.keymap.nextLesson):
		return b, b.nextLesson()

	case bubblesKey.Matches(msg, b.keymap.prevLesson):
		return b, b.previousLesson()

	case bubblesKey.Matches(msg, b.keymap.replay):
		b.controller.SeekTo(0)

	case bubblesKey.Matches(msg, b.keymap.seekBack):
		b.controller.SeekByOffset(-5)

	case bubblesKey.Matches(msg, b.keymap.seekForward):
		b.controller.SeekByOffset(5)

	case bubblesKey.Matches(msg, b.keymap.back):
		b.saveProgress()
		b.controller.StopPolling()
		b.gestures.Reset()
		b.newState(lessonsState)
	}

	return b, nil
}

// updateMouse feeds pointer events to the gesture interpreter and fires
// navigation when a swipe is released.
func (b *statefulBubble) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if b.state != watchState {
		return b, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			b.gestures.Begin(float64(msg.X), float64(msg.Y))
		}
	case tea.MouseActionMotion:
		b.gestures.Move(float64(msg.X), float64(msg.Y))
	case tea.MouseActionRelease:
		switch b.gestures.Release() {
		case gesture.IntentNext:
			return b, b.nextLesson()
		case gesture.IntentPrevious:
			return b, b.previousLesson()
		}
	}

	return b, nil
}

// updateLists forwards residual messages to the focused list component.
func (b *statefulBubble) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch b.state {
	case historyState:
		b.historyC, cmd = b.historyC.Update(msg)
	case lessonsState:
		b.lessonsC, cmd = b.lessonsC.Update(msg)
	}
	return b, cmd
}
