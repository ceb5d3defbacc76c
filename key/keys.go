// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Media Cache - these keys govern whether remote sources are cached locally and for how long.
const (
	CacheEnabled = "cache.enabled"
	CacheTTL     = "cache.ttl"
)

// Media Playback - these keys define the initial intent and timing of a playback session.
const (
	Player                   = "player.default"
	PlayerPollInterval       = "player.poll_interval"
	PlayerVolume             = "player.volume"
	PlayerLooping            = "player.looping"
	PlayerAutoplay           = "player.autoplay"
	PlayerBackgroundPlayback = "player.background_playback"
)

// Closed Captions - these keys configure caption timing.
const (
	CaptionsOffset = "captions.offset"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
