// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"github.com/lingoreel-cli/lingoreel/history"
	"github.com/lingoreel-cli/lingoreel/internal/ui"
	"github.com/lingoreel-cli/lingoreel/key"
	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/log"
)

// tickMsg drives the periodic refresh of the watch view.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadLessons fetches the full lesson catalog in the background.
func (b *statefulBubble) loadLessons() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		language := viper.GetString(key.ContentLanguage)

		max, err := b.service.MaxLessonID(ctx, language)
		if err != nil {
			b.errorChannel <- fmt.Errorf("lesson catalog: %w", err)
			return nil
		}

		var lessons []*lesson.Lesson
		for id := 1; id <= max; id++ {
			l, err := b.service.FetchLesson(ctx, id, language)
			if err != nil {
				log.Warnf("fetch lesson %d: %v", id, err)
				continue
			}
			if l != nil {
				lessons = append(lessons, l)
			}
		}

		b.lessonsLoadedChannel <- lessons
		return nil
	}
}

func (b *statefulBubble) waitForLessonsLoaded() tea.Cmd {
	return func() tea.Msg {
		return <-b.lessonsLoadedChannel
	}
}

func (b *statefulBubble) waitForLessonStarted() tea.Cmd {
	return func() tea.Msg {
		return <-b.lessonStartedChannel
	}
}

func (b *statefulBubble) waitForError() tea.Cmd {
	return func() tea.Msg {
		return <-b.errorChannel
	}
}

// notifierCmd waits for the next status-line notification.
func (b *statefulBubble) notifierCmd() tea.Cmd {
	return func() tea.Msg {
		return <-b.notificationChannel
	}
}

// startLesson loads a specific lesson through the navigator.
func (b *statefulBubble) startLesson(id int) tea.Cmd {
	return func() tea.Msg {
		if err := b.navigator.Load(context.Background(), id); err != nil {
			b.errorChannel <- err
			return nil
		}
		b.lessonStartedChannel <- b.navigator.Current()
		return nil
	}
}

// nextLesson advances through the navigator; gate checks and wrap-around
// happen inside it.
func (b *statefulBubble) nextLesson() tea.Cmd {
	return func() tea.Msg {
		if err := b.navigator.Next(context.Background()); err != nil {
			b.errorChannel <- err
			return nil
		}
		if current := b.navigator.Current(); current != nil {
			b.lessonStartedChannel <- current
		}
		return nil
	}
}

func (b *statefulBubble) previousLesson() tea.Cmd {
	return func() tea.Msg {
		if err := b.navigator.Previous(context.Background()); err != nil {
			b.errorChannel <- err
			return nil
		}
		if current := b.navigator.Current(); current != nil {
			b.lessonStartedChannel <- current
		}
		return nil
	}
}

// loadHistory fills the history list from the persistent watch registry.
func (b *statefulBubble) loadHistory() error {
	records, err := history.Get()
	if err != nil {
		return err
	}

	items := make([]list.Item, 0, len(records))
	for _, record := range records {
		items = append(items, &listItem{internal: record})
	}
	b.historyC.SetItems(items)
	return nil
}

// saveProgress persists the current lesson's watch percentage.
func (b *statefulBubble) saveProgress() {
	if !viper.GetBool(key.HistorySaveOnWatch) {
		return
	}
	current := b.navigator.Current()
	if current == nil {
		return
	}
	if err := history.Save(current, b.controller.Progress()); err != nil {
		log.Warnf("save watch history: %v", err)
		select {
		case b.notificationChannel <- ui.SaveFailureNotification:
		default:
		}
	}
}
