// Package player defines the platform video service driven by the playback controller.
// The primary implementation targets mpv via its JSON-IPC interface, one process per session.
package player

import (
	"context"
	"errors"
	"time"
)

// Handle identifies a platform session. It is valid from a successful Create until Dispose.
type Handle int64

// ErrUnknownHandle is returned for handles that were never created or are already disposed.
var ErrUnknownHandle = errors.New("unknown session handle")

// Service encapsulates the capabilities required from a playback backend.
type Service interface {
	// Create starts a session for the described media. The session starts paused.
	Create(ctx context.Context, d Descriptor) (Handle, error)

	// Dispose tears the session down and releases every resource held for it.
	Dispose(ctx context.Context, h Handle) error

	Play(ctx context.Context, h Handle) error
	Pause(ctx context.Context, h Handle) error

	// SeekTo moves playback to an absolute position.
	SeekTo(ctx context.Context, h Handle, position time.Duration) error

	// SetVolume takes a volume in [0, 1].
	SetVolume(ctx context.Context, h Handle, volume float64) error

	SetPlaybackSpeed(ctx context.Context, h Handle, speed float64) error
	SetLooping(ctx context.Context, h Handle, looping bool) error

	// Position reads the current playback position. It fails when no media is loaded.
	Position(ctx context.Context, h Handle) (time.Duration, error)

	// Events streams session events in emission order. The channel is closed
	// when ctx is cancelled, the session is disposed or the backend goes away.
	// A session supports a single subscriber.
	Events(ctx context.Context, h Handle) (<-chan Event, error)
}

// Descriptor describes the media a session should open.
// It is one of AssetDescriptor, NetworkDescriptor, FileDescriptor or ContentDescriptor.
type Descriptor interface {
	descriptor()
}

// AssetDescriptor names media bundled with the application.
type AssetDescriptor struct {
	Asset   string
	Package string
}

// NetworkDescriptor points at remote media.
type NetworkDescriptor struct {
	URI        string
	FormatHint string
	Headers    map[string]string
}

// FileDescriptor points at local media, including cached artifacts.
type FileDescriptor struct {
	URI        string
	FormatHint string
	Headers    map[string]string
}

// ContentDescriptor carries an opaque content handle understood by the backend.
type ContentDescriptor struct {
	URI string
}

func (AssetDescriptor) descriptor()   {}
func (NetworkDescriptor) descriptor() {}
func (FileDescriptor) descriptor()    {}
func (ContentDescriptor) descriptor() {}
