package tui

import (
	"context"

	"github.com/cachedplayer/cachedplayer/playback"
	"github.com/cachedplayer/cachedplayer/util"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
)

func (b *bubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.FocusMsg:
		b.setFocus(true)
	case tea.BlurMsg:
		b.setFocus(false)
	case snapshotMsg:
		b.value = playback.Value(msg)
		if b.options.ExitOnComplete && b.value.IsCompleted && !b.value.IsLooping {
			return b, tea.Quit
		}
	case errMsg:
		b.lastError = mo.Some(msg.err.Error())
	case tea.KeyMsg:
		return b, b.handleKey(msg)
	}

	return b, nil
}

func (b *bubble) handleKey(msg tea.KeyMsg) tea.Cmd {
	v := b.value

	switch {
	case key.Matches(msg, b.keymap.quit, b.keymap.forceQuit):
		return tea.Quit
	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
		return nil
	}

	b.lastError = mo.None[string]()

	switch {
	case key.Matches(msg, b.keymap.playPause):
		if v.IsPlaying {
			return b.run(b.ctrl.Pause)
		}
		return b.run(b.ctrl.Play)
	case key.Matches(msg, b.keymap.seekBack):
		return b.run(func(ctx context.Context) error {
			return b.ctrl.SeekTo(ctx, max(v.Position-seekStep, 0))
		})
	case key.Matches(msg, b.keymap.seekForward):
		return b.run(func(ctx context.Context) error {
			return b.ctrl.SeekTo(ctx, v.Position+seekStep)
		})
	case key.Matches(msg, b.keymap.volumeUp):
		return b.run(func(ctx context.Context) error {
			return b.ctrl.SetVolume(ctx, v.Volume+volumeStep)
		})
	case key.Matches(msg, b.keymap.volumeDown):
		return b.run(func(ctx context.Context) error {
			return b.ctrl.SetVolume(ctx, v.Volume-volumeStep)
		})
	case key.Matches(msg, b.keymap.speedUp):
		return b.run(func(ctx context.Context) error {
			return b.ctrl.SetPlaybackSpeed(ctx, util.Clamp(v.PlaybackSpeed+speedStep, minSpeed, maxSpeed))
		})
	case key.Matches(msg, b.keymap.speedDown):
		return b.run(func(ctx context.Context) error {
			return b.ctrl.SetPlaybackSpeed(ctx, util.Clamp(v.PlaybackSpeed-speedStep, minSpeed, maxSpeed))
		})
	case key.Matches(msg, b.keymap.loop):
		return b.run(func(ctx context.Context) error {
			return b.ctrl.SetLooping(ctx, !v.IsLooping)
		})
	case key.Matches(msg, b.keymap.captionEarlier):
		return b.run(func(ctx context.Context) error {
			return b.ctrl.SetCaptionOffset(ctx, v.CaptionOffset-offsetStep)
		})
	case key.Matches(msg, b.keymap.captionLater):
		return b.run(func(ctx context.Context) error {
			return b.ctrl.SetCaptionOffset(ctx, v.CaptionOffset+offsetStep)
		})
	}

	return nil
}
