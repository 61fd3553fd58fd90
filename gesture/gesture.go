// Package gesture turns raw pointer drags into lesson navigation intents.
// A drag must be decisively vertical before it is treated as a swipe, and a
// swipe must travel far enough before release to fire; anything else snaps
// back with no effect.
package gesture

import (
	"math"
	"sync"

	"github.com/spf13/viper"

	"github.com/lingoreel-cli/lingoreel/key"
)

// Intent is the navigation decision produced by a released swipe.
type Intent int

const (
	IntentNone Intent = iota
	// IntentNext fires on an upward swipe past the release threshold.
	IntentNext
	// IntentPrevious fires on a downward swipe past the release threshold.
	IntentPrevious
)

func (i Intent) String() string {
	switch i {
	case IntentNext:
		return "next"
	case IntentPrevious:
		return "previous"
	}
	return "none"
}

// Direction is the vertical sense of an active swipe, for rendering.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
)

// State is a render snapshot of the interpreter, used for the drag indicator.
type State struct {
	Active    bool
	Amplitude float64
	Direction Direction
}

// verticalRatio is how dominantly vertical a drag must be to start a swipe.
const verticalRatio = 3.0

// Interpreter accumulates pointer movement and decides, on release, whether
// the drag was a navigation swipe. Swipes are only recognized while the
// page gate reports the swipe surface active, so scrolling caption pages
// never changes the lesson.
type Interpreter struct {
	mu sync.Mutex

	startThreshold   float64
	releaseThreshold float64

	pageGate func() bool

	tracking bool
	active   bool
	originX  float64
	originY  float64
	dx       float64
	dy       float64
}

// NewInterpreter builds an interpreter configured from the gesture.* settings.
func NewInterpreter() *Interpreter {
	return &Interpreter{
		startThreshold:   viper.GetFloat64(key.GestureStartThreshold),
		releaseThreshold: viper.GetFloat64(key.GestureReleaseThreshold),
	}
}

// SetPageGate installs the predicate deciding whether swipes are live.
func (i *Interpreter) SetPageGate(fn func() bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pageGate = fn
}

func (i *Interpreter) gateOpen() bool {
	return i.pageGate == nil || i.pageGate()
}

// Begin records the drag origin on pointer down. Ignored while the swipe
// surface is inactive.
func (i *Interpreter) Begin(x, y float64) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.gateOpen() {
		return
	}
	i.tracking = true
	i.active = false
	i.originX, i.originY = x, y
	i.dx, i.dy = 0, 0
}

// Move updates the drag displacement. The gesture activates once the drag is
// dominantly vertical and has traveled past the start threshold.
func (i *Interpreter) Move(x, y float64) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.tracking {
		return
	}
	i.dx = x - i.originX
	i.dy = y - i.originY

	if !i.active &&
		math.Abs(i.dy) > verticalRatio*math.Abs(i.dx) &&
		math.Abs(i.dy) > i.startThreshold {
		i.active = true
	}
}

// Release ends the drag and returns the navigation intent. A gesture that
// never activated, or released inside the threshold, snaps back as IntentNone.
func (i *Interpreter) Release() Intent {
	i.mu.Lock()
	defer i.mu.Unlock()

	active, dy := i.active, i.dy
	i.tracking = false
	i.active = false
	i.dx, i.dy = 0, 0

	if !active {
		return IntentNone
	}
	switch {
	case dy < -i.releaseThreshold:
		return IntentNext
	case dy > i.releaseThreshold:
		return IntentPrevious
	}
	return IntentNone
}

// Reset abandons any drag in progress. Called when a transition begins.
func (i *Interpreter) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.tracking = false
	i.active = false
	i.dx, i.dy = 0, 0
}

// State returns a snapshot for the drag indicator.
func (i *Interpreter) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()

	s := State{Active: i.active, Amplitude: math.Abs(i.dy)}
	switch {
	case !i.active:
	case i.dy < 0:
		s.Direction = DirectionUp
	case i.dy > 0:
		s.Direction = DirectionDown
	}
	return s
}
