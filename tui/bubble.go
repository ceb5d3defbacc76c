package tui

import (
	"context"
	"time"

	"github.com/cachedplayer/cachedplayer/lifecycle"
	"github.com/cachedplayer/cachedplayer/playback"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
)

const (
	seekStep    = 5 * time.Second
	volumeStep  = 0.1
	speedStep   = 0.25
	offsetStep  = 250 * time.Millisecond
	minSpeed    = speedStep
	maxSpeed    = 4.0
	defaultWide = 80
)

// snapshotMsg carries a controller snapshot into the update loop.
type snapshotMsg playback.Value

// errMsg reports a rejected or failed control action.
type errMsg struct{ err error }

// bubble is the status view model. It never mutates the snapshot it shows:
// every key press is turned into a controller call and the result arrives
// back as a snapshotMsg.
type bubble struct {
	ctx     context.Context
	ctrl    Controller
	options Options

	value     playback.Value
	lastError mo.Option[string]

	keymap    *keymap
	progressC progress.Model
	helpC     help.Model

	width, height int
	focused       bool
}

func newBubble(ctx context.Context, ctrl Controller, options Options) *bubble {
	b := &bubble{
		ctx:       ctx,
		ctrl:      ctrl,
		options:   options,
		value:     ctrl.Value(),
		keymap:    newKeymap(),
		progressC: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		helpC:     help.New(),
		width:     defaultWide,
		focused:   true,
	}
	b.resize(defaultWide, 0)
	return b
}

func (b *bubble) Init() tea.Cmd {
	return nil
}

func (b *bubble) resize(width, height int) {
	b.width, b.height = width, height
	b.progressC.Width = max(width-paddingStyle.GetHorizontalPadding()-len("0:00:00 / 0:00:00 "), 10)
	b.helpC.Width = width
}

func (b *bubble) setFocus(focused bool) {
	if b.focused == focused {
		return
	}
	b.focused = focused

	if b.options.Lifecycle == nil {
		return
	}
	if focused {
		b.options.Lifecycle.Notify(lifecycle.Foreground)
	} else {
		b.options.Lifecycle.Notify(lifecycle.Background)
	}
}

// run wraps a controller call as a command so blocking IPC stays off the update loop.
func (b *bubble) run(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(b.ctx); err != nil {
			return errMsg{err}
		}
		return nil
	}
}
