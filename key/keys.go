// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Content Service - these keys govern communication with the lesson content backend.
const (
	ContentBaseURL  = "content.base_url"
	ContentLanguage = "content.language"
	ContentUserID   = "content.user_id"
)

// Media Playback - these keys tune the clip playback controller and seek executor.
const (
	Player                = "player.backend"
	PlayerPollInterval    = "player.poll_interval_ms"
	PlaybackSeekThrottle  = "playback.seek_throttle_ms"
	PlaybackLoopThrottle  = "playback.loop_throttle_ms"
	PlaybackSeekTolerance = "playback.seek_tolerance_sec"
)

// Phrase Replay - these keys configure the "rewind and replay the key phrase" pedagogy.
const (
	ReplayEnabled = "replay.enabled"
	ReplayLimit   = "replay.limit"
)

// Gesture Recognition - these keys define the vertical-swipe navigation thresholds.
const (
	GestureStartThreshold   = "gesture.start_threshold"
	GestureReleaseThreshold = "gesture.release_threshold"
)

// History Tracking - these keys configure the persistence of lesson consumption state.
const (
	HistorySaveOnWatch = "history.save_on_watch"
)

// Command Line Interface - these keys control the outer CLI shell behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Icons - this key selects the visual variant used for UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)
