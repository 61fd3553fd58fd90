// Package player defines a unified abstraction layer for external video playback engines.
// The primary implementation targets 'mpv' via its JSON-IPC interface; tests use in-memory fakes.
package player

// Player encapsulates the capabilities the playback controller requires from
// a video backend. No assumptions are made beyond eventual consistency and a
// visible read-after-write lag on seeks.
type Player interface {
	// Load opens the video identified by videoID and positions playback at
	// startAt seconds on the absolute timeline. If a player instance is
	// already running, the new video replaces the current one.
	Load(videoID string, title string, startAt float64) error

	// SeekTo transitions playback to an absolute timestamp in seconds.
	// When allowSeekAhead is false the backend may snap to a nearby keyframe.
	SeekTo(seconds float64, allowSeekAhead bool) error

	// CurrentTime retrieves the current absolute playback position in seconds.
	CurrentTime() (float64, error)

	// Paused retrieves the current suspension state of the playback engine.
	Paused() (bool, error)

	// SetPaused suspends or resumes playback.
	SetPaused(paused bool) error

	// IsRunning validates the liveness of the underlying playback process.
	IsRunning() bool

	// Close terminates the playback engine and releases all associated resources.
	Close() error

	// Wait returns a channel that is closed when the playback session terminates.
	Wait() <-chan struct{}
}
