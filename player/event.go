package player

import (
	"errors"
	"time"
)

// EventType tags a platform event.
type EventType int

const (
	Unknown EventType = iota
	Ready
	Completed
	BufferingUpdate
	BufferingStart
	BufferingEnd
	PlayingStateUpdate
)

func (t EventType) String() string {
	switch t {
	case Ready:
		return "ready"
	case Completed:
		return "completed"
	case BufferingUpdate:
		return "buffering-update"
	case BufferingStart:
		return "buffering-start"
	case BufferingEnd:
		return "buffering-end"
	case PlayingStateUpdate:
		return "playing-state-update"
	default:
		return "unknown"
	}
}

// ErrExited is delivered as a terminal event when the backend goes away on its own.
var ErrExited = errors.New("player exited unexpectedly")

// Range is a span of buffered media.
type Range struct {
	Start time.Duration
	End   time.Duration
}

// Size is the natural size of the video frame. Zero for audio-only media.
type Size struct {
	Width  float64
	Height float64
}

// Event is a single platform event.
// An event with a non-nil Err is a terminal platform error and carries no other data.
type Event struct {
	Type EventType

	// Ready
	Duration           time.Duration
	Size               Size
	RotationCorrection int

	// BufferingUpdate
	Buffered []Range

	// PlayingStateUpdate
	IsPlaying bool

	Err error
}
