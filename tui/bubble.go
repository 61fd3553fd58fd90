// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/mo"
	"github.com/spf13/viper"

	"github.com/lingoreel-cli/lingoreel/caption"
	"github.com/lingoreel-cli/lingoreel/gesture"
	"github.com/lingoreel-cli/lingoreel/internal/ui"
	"github.com/lingoreel-cli/lingoreel/key"
	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/navigate"
	"github.com/lingoreel-cli/lingoreel/playback"
	"github.com/lingoreel-cli/lingoreel/player"
	"github.com/lingoreel-cli/lingoreel/transition"
	"github.com/lingoreel-cli/lingoreel/util"
)

// statefulBubble encapsulates the comprehensive application state, including component models and workflow tracking.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	loading       bool

	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	historyC  list.Model
	lessonsC  list.Model
	progressC progress.Model
	helpC     help.Model

	// playback pipeline
	service    lesson.ContentService
	mediaP     player.Player
	controller *playback.Controller
	machine    *transition.Machine
	captions   *caption.Synchronizer
	gestures   *gesture.Interpreter
	navigator  *navigate.Navigator

	lessonsLoadedChannel chan []*lesson.Lesson
	lessonStartedChannel chan *lesson.Lesson
	notificationChannel  chan string
	errorChannel         chan error

	progressStatus string
	lastError      error

	width, height int
	notifier      *ui.Model

	options *Options
}

// raiseError dispatches a terminal error and transitions the application to the failure view.
func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

// setState performs a synchronous transition of both the application workflow and its associated keymap.
func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState facilitates an idempotent transition to a target state, recording the previous state in the navigation history when appropriate.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	// Do not push these states to history
	if b.state != loadingState && b.state != watchState {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

// previousState restores the application to its immediate predecessor in the navigation stack.
func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		s := b.statesHistory.Pop()
		b.setState(s)
	}
}

// resize propagates terminal dimension changes to all child component models.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	styledWidth := width - x
	styledHeight := height - y

	listWidth := width - xx
	listHeight := height - yy

	b.historyC.SetSize(listWidth, listHeight)
	b.historyC.Help.Width = listWidth

	b.lessonsC.SetSize(listWidth, listHeight)
	b.lessonsC.Help.Width = listWidth

	b.progressC.Width = util.Min(styledWidth, 60)

	b.width = styledWidth
	b.height = styledHeight
	b.helpC.Width = listWidth
}

// startLoading enters a concurrent loading state, initializing visual indicators across child components.
func (b *statefulBubble) startLoading() tea.Cmd {
	b.loading = true
	return tea.Batch(b.lessonsC.StartSpinner(), b.historyC.StartSpinner())
}

// stopLoading exits the loading state and synchronizes child component visual indicators.
func (b *statefulBubble) stopLoading() tea.Cmd {
	b.loading = false
	b.lessonsC.StopSpinner()
	b.historyC.StopSpinner()
	return nil
}

// newBubble performs a complete initialization of the application's primary UI model.
func newBubble(options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        keymap,

		lessonsLoadedChannel: make(chan []*lesson.Lesson),
		lessonStartedChannel: make(chan *lesson.Lesson),
		notificationChannel:  make(chan string, 8),
		errorChannel:         make(chan error),

		notifier: &ui.Model{},
	}

	type listOptions struct {
		TitleStyle mo.Option[lipgloss.Style]
	}

	makeList := func(title string, description bool, options *listOptions) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.ShowDescription = description
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(accentColor).
			Foreground(accentColor).
			Padding(0, 0, 0, 1)
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Title = title
		listC.Styles.NoItems = paddingStyle
		if titleStyle, ok := options.TitleStyle.Get(); ok {
			listC.Styles.Title = titleStyle
		}
		listC.StatusMessageLifetime = time.Hour * 999
		listC.SetShowPagination(false)
		listC.SetShowStatusBar(false)

		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.progressC = progress.New(progress.WithDefaultGradient())

	bubble.historyC = makeList("History", true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("3")).Padding(0, 1),
		),
	})
	bubble.historyC.SetStatusBarItemName("entry", "entries")

	bubble.lessonsC = makeList(fmt.Sprintf("Lessons (%s)", viper.GetString(key.ContentLanguage)), true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1),
		),
	})
	bubble.lessonsC.SetStatusBarItemName("lesson", "lessons")

	bubble.options = options

	bubble.wirePipeline(options)

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}

// wirePipeline builds the playback stack: player, controller, caption
// synchronizer, transition machine, navigator, and gesture interpreter.
func (b *statefulBubble) wirePipeline(options *Options) {
	b.service = options.Service
	b.mediaP = options.Player
	if b.mediaP == nil {
		b.mediaP = player.NewMPV()
	}

	b.controller = playback.NewController(b.mediaP)

	b.captions = caption.NewSynchronizer(func(relative float64) {
		b.controller.SeekTo(relative)
	})

	b.machine = transition.NewMachine(b.mediaP, b.controller, b.captions)

	b.navigator = navigate.NewNavigator(options.Service, options.Gate, b.machine)
	b.navigator.OnNotify(func(message string) {
		select {
		case b.notificationChannel <- message:
		default:
		}
	})

	b.machine.OnPhase(func(phase transition.Phase) {
		var status string
		switch phase {
		case transition.PhaseUnloading:
			status = "Switching lesson"
		case transition.PhaseLoading:
			status = "Loading video"
		case transition.PhaseSeeking:
			status = "Cueing clip"
		}
		if status == "" {
			return
		}
		select {
		case b.notificationChannel <- status:
		default:
		}
	})

	b.gestures = gesture.NewInterpreter()
	b.gestures.SetPageGate(func() bool {
		return b.state == watchState && !b.machine.Transitioning()
	})

	b.controller.OnLoop(func(firstPlaythrough bool) {
		if firstPlaythrough {
			b.captions.EndFirstPlaythrough()
			b.saveProgress()
		}
	})
}

var accentColor = lipgloss.Color("205")
