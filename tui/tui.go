// Package tui provides the primary terminal user interface implementation.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/player"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Service lesson.ContentService
	Gate    lesson.AccessGate

	// Player overrides the configured media backend; nil selects mpv.
	Player player.Player

	// Continue resumes from the most recent history entry.
	Continue bool
}

// Run initializes and executes the primary Bubble Tea application loop.
func Run(options *Options) error {
	bubble := newBubble(options)

	if options.Continue {
		if err := bubble.loadHistory(); err != nil {
			return err
		}
		bubble.newState(historyState)
	}

	defer bubble.shutdown()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// shutdown releases the external player on exit.
func (b *statefulBubble) shutdown() {
	b.controller.StopPolling()
	if b.mediaP != nil {
		_ = b.mediaP.Close()
	}
}
