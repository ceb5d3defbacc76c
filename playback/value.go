package playback

import (
	"time"

	"github.com/cachedplayer/cachedplayer/caption"
	"github.com/cachedplayer/cachedplayer/player"
	"github.com/samber/mo"
)

// Value is an immutable snapshot of playback state. It is replaced wholesale on every change.
type Value struct {
	Duration      time.Duration
	Position      time.Duration
	Caption       caption.Caption
	CaptionOffset time.Duration
	Buffered      []player.Range

	// IsInitialized is true once the platform reported readiness and no error occurred since.
	IsInitialized bool
	IsPlaying     bool
	IsLooping     bool
	IsBuffering   bool
	// IsCompleted is cleared whenever the position changes or playback resumes.
	IsCompleted bool

	// Volume is in [0, 1].
	Volume float64
	// PlaybackSpeed is always positive.
	PlaybackSpeed float64

	// RotationCorrection is the clockwise rotation in degrees needed to display frames upright.
	RotationCorrection int
	Size               player.Size

	// Error is set when the platform failed. It implies !IsInitialized.
	Error mo.Option[string]
}

// NewValue returns the snapshot of an uninitialized controller.
func NewValue() Value {
	return Value{
		Volume:        1,
		PlaybackSpeed: 1,
	}
}

// HasError reports whether the platform failed.
func (v Value) HasError() bool {
	return v.Error.IsPresent()
}

// AspectRatio returns width over height, or 1 while the size is unknown.
func (v Value) AspectRatio() float64 {
	if v.Size.Width <= 0 || v.Size.Height <= 0 {
		return 1
	}
	return v.Size.Width / v.Size.Height
}
