// Package tui provides the terminal status view shown while a source is playing.
package tui

import (
	"context"
	"time"

	"github.com/cachedplayer/cachedplayer/lifecycle"
	"github.com/cachedplayer/cachedplayer/playback"
	tea "github.com/charmbracelet/bubbletea"
)

// Controller is the part of playback.Controller the view drives.
type Controller interface {
	Value() playback.Value
	AddListener(fn func(playback.Value)) playback.ListenerID
	RemoveListener(id playback.ListenerID)

	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	SeekTo(ctx context.Context, position time.Duration) error
	SetVolume(ctx context.Context, volume float64) error
	SetPlaybackSpeed(ctx context.Context, speed float64) error
	SetLooping(ctx context.Context, looping bool) error
	SetCaptionOffset(ctx context.Context, offset time.Duration) error
}

// Options encapsulates the runtime configuration for the status view.
type Options struct {
	// Title is shown above the progress bar.
	Title string

	// Lifecycle receives focus and blur reports from the terminal. May be nil.
	Lifecycle *lifecycle.Notifier

	// ExitOnComplete quits the view once playback completes.
	ExitOnComplete bool
}

// Run shows the status view until the user quits, ctx is cancelled or, with
// ExitOnComplete, playback completes.
func Run(ctx context.Context, ctrl Controller, options Options) error {
	bubble := newBubble(ctx, ctrl, options)

	program := tea.NewProgram(
		bubble,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	id := ctrl.AddListener(func(v playback.Value) {
		program.Send(snapshotMsg(v))
	})
	defer ctrl.RemoveListener(id)

	// Catch up on anything published between newBubble and AddListener.
	go program.Send(snapshotMsg(ctrl.Value()))

	_, err := program.Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
