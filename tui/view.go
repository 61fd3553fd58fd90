// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"

	"github.com/lingoreel-cli/lingoreel/caption"
	"github.com/lingoreel-cli/lingoreel/color"
	"github.com/lingoreel-cli/lingoreel/gesture"
	"github.com/lingoreel-cli/lingoreel/icon"
	"github.com/lingoreel-cli/lingoreel/style"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)

	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(color.Orange).Underline(true)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case historyState:
		output = b.viewHistory()
	case lessonsState:
		output = b.viewLessons()
	case watchState:
		output = b.viewWatch()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.progressStatus,
		},
	)
}

func (b *statefulBubble) viewHistory() string {
	return listExtraPaddingStyle.Render(b.historyC.View())
}

func (b *statefulBubble) viewLessons() string {
	return listExtraPaddingStyle.Render(b.lessonsC.View())
}

// viewWatch renders the playback screen: lesson header, progress bar, the
// active caption pair with the highlight phrase styled, and replay/gesture
// indicators.
func (b *statefulBubble) viewWatch() string {
	current := b.navigator.Current()
	if current == nil {
		return b.renderLines(true, []string{style.Title("Now Playing"), "", "No lesson loaded"})
	}

	clip := current.Content.Video
	lines := []string{
		style.Title("Now Playing"),
		"",
		style.Truncate(b.width)(fmt.Sprintf("%s Lesson %d %s",
			icon.Get(icon.Progress),
			current.ID,
			style.Faint("("+current.Language+")"))),
		"",
		b.progressC.ViewAs(b.controller.Progress()),
		"",
	}

	lines = append(lines, b.captionLines(clip.HighlightPhrase)...)
	lines = append(lines, "", b.statusLine())

	return b.renderLines(true, lines)
}

// captionLines renders the active caption pair, wrapped to the terminal and
// with the highlight phrase emphasized inside the target text.
func (b *statefulBubble) captionLines(phrase string) []string {
	active, ok := b.captions.Active().Get()
	if !ok {
		return []string{style.Faint("…")}
	}

	target := active.TargetText
	if match, ok := caption.FindHighlight(target, phrase).Get(); ok {
		target = target[:match.Span.Start] +
			highlightStyle.Render(target[match.Span.Start:match.Span.End]) +
			target[match.Span.End:]
	}

	out := strings.Split(wrap.String(target, b.width), "\n")
	native := wrap.String(style.Faint(active.NativeText), b.width)
	out = append(out, strings.Split(native, "\n")...)
	return out
}

// statusLine renders the replay counter and the swipe indicator.
func (b *statefulBubble) statusLine() string {
	var parts []string

	replay := b.captions.Replay()
	if replay.RepeatCount > 0 {
		parts = append(parts, fmt.Sprintf("%s replayed %d", icon.Get(icon.Replay), replay.RepeatCount))
	}
	if b.controller.FirstPlaythrough() {
		parts = append(parts, style.Faint("first playthrough"))
	}

	if gs := b.gestures.State(); gs.Active {
		arrow := icon.Get(icon.Swipe)
		if gs.Direction == gesture.DirectionDown {
			arrow = "v"
		}
		parts = append(parts, fmt.Sprintf("%s %.0f", arrow, gs.Amplitude))
	}

	return strings.Join(parts, "  ")
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorBody := errorStyle.Render(fmt.Sprintf("Critical Failure: %v", b.lastError))
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		append([]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
		},
			errorMsg,
		),
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
