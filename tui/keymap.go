package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keymap defines the keyboard interactions of the status view.
type keymap struct {
	quit, forceQuit,
	playPause,
	seekBack, seekForward,
	volumeUp, volumeDown,
	speedUp, speedDown,
	loop,
	captionEarlier, captionLater,
	showHelp key.Binding
}

func newKeymap() *keymap {
	return &keymap{
		quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		seekBack: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "-5s"),
		),
		seekForward: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "+5s"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "volume up"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "volume down"),
		),
		speedUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "faster"),
		),
		speedDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "slower"),
		),
		loop: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "loop"),
		),
		captionEarlier: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "captions earlier"),
		),
		captionLater: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "captions later"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.seekBack, k.seekForward, k.quit, k.showHelp}
}

func (k *keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.playPause, k.seekBack, k.seekForward, k.loop},
		{k.volumeUp, k.volumeDown, k.speedUp, k.speedDown},
		{k.captionEarlier, k.captionLater, k.quit, k.forceQuit},
	}
}
