package playback

import (
	"context"
	"time"

	"github.com/cachedplayer/cachedplayer/internal/cache"
	"github.com/cachedplayer/cachedplayer/lifecycle"
	"github.com/jonboulle/clockwork"
)

// DefaultPollInterval is the period of the position poller.
const DefaultPollInterval = 500 * time.Millisecond

// Cache picks between a cached artifact and the original network source.
// *cache.Manager implements it.
type Cache interface {
	Resolve(ctx context.Context, rawURL string, headers map[string]string) cache.Resolution
	Remove(rawURL string) error
}

type options struct {
	cache              Cache
	lifecycle          lifecycle.Source
	backgroundPlayback bool
	clock              clockwork.Clock
	pollInterval       time.Duration

	volume        float64
	speed         float64
	looping       bool
	autoplay      bool
	captionOffset time.Duration
}

func defaultOptions() options {
	return options{
		clock:        clockwork.NewRealClock(),
		pollInterval: DefaultPollInterval,
		volume:       1,
		speed:        1,
	}
}

// Option configures a Controller.
type Option func(*options)

// WithCache enables caching of network sources. Without it every source plays from its origin.
func WithCache(c Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithLifecycle pauses playback while the application is in the background
// and resumes it on return if it was playing.
func WithLifecycle(src lifecycle.Source) Option {
	return func(o *options) {
		o.lifecycle = src
	}
}

// WithBackgroundPlayback keeps playing in the background, ignoring any lifecycle source.
func WithBackgroundPlayback(enabled bool) Option {
	return func(o *options) {
		o.backgroundPlayback = enabled
	}
}

// WithClock replaces the clock driving the position poller.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithPollInterval sets the position poller period. Non-positive values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithVolume sets the volume applied once the session is ready.
func WithVolume(v float64) Option {
	return func(o *options) {
		o.volume = v
	}
}

// WithPlaybackSpeed sets the speed applied on the first play. Non-positive values are ignored.
func WithPlaybackSpeed(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.speed = s
		}
	}
}

// WithLooping sets the looping mode applied once the session is ready.
func WithLooping(looping bool) Option {
	return func(o *options) {
		o.looping = looping
	}
}

// WithAutoplay starts playback as soon as the session is ready.
func WithAutoplay(autoplay bool) Option {
	return func(o *options) {
		o.autoplay = autoplay
	}
}

// WithCaptionOffset sets the initial caption offset.
func WithCaptionOffset(offset time.Duration) Option {
	return func(o *options) {
		o.captionOffset = offset
	}
}
