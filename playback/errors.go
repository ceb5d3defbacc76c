package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpeed is returned for non-positive playback speeds. The snapshot is left unchanged.
	ErrInvalidSpeed = errors.New("playback speed must be positive")

	// ErrDisposed is returned by Initialize once the controller has been disposed.
	ErrDisposed = errors.New("controller is disposed")

	// ErrAlreadyInitialized is returned by a second Initialize call.
	ErrAlreadyInitialized = errors.New("controller is already initialized")
)

// PlatformError wraps a failure reported by the platform video service.
type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform %s: %s", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}
