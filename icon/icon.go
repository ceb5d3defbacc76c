// Package icon renders UI symbols in the variant chosen by icons.variant.
package icon

import (
	"github.com/cachedplayer/cachedplayer/key"
	"github.com/spf13/viper"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Play
	Pause
	Loop
	Cached
	Buffering
)

type iconDef struct {
	emoji string
	nerd  string
	plain string
}

var icons = map[Icon]iconDef{
	Success:   {emoji: "🎉", nerd: "", plain: "✓"},
	Fail:      {emoji: "💥", nerd: "", plain: "✗"},
	Progress:  {emoji: "⏳", nerd: "", plain: "…"},
	Play:      {emoji: "▶️", nerd: "", plain: ">"},
	Pause:     {emoji: "⏸️", nerd: "", plain: "||"},
	Loop:      {emoji: "🔁", nerd: "", plain: "@"},
	Cached:    {emoji: "💾", nerd: "", plain: "#"},
	Buffering: {emoji: "🌀", nerd: "", plain: "~"},
}

func (d iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	return icons[i].get()
}
