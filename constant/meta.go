// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// App is the canonical application identifier used for filesystem paths and CLI branding.
	App = "cachedplayer"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// Repository is the GitHub owner/name pair releases are published under.
	Repository = "cachedplayer/cachedplayer"

	// UserAgent is the default HTTP User-Agent string used when populating the media cache.
	UserAgent = "cachedplayer/" + Version
)

// Build metadata, overridden at link time with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
