package tui

import (
	"fmt"
	"strings"

	"github.com/cachedplayer/cachedplayer/color"
	"github.com/cachedplayer/cachedplayer/icon"
	"github.com/cachedplayer/cachedplayer/playback"
	"github.com/cachedplayer/cachedplayer/style"
	"github.com/cachedplayer/cachedplayer/util"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
)

var (
	paddingStyle = lipgloss.NewStyle().Padding(1, 2)
	captionStyle = style.New().Foreground(style.CaptionColor).Italic(true)
	errorStyle   = style.New().Foreground(style.ErrorColor)
)

func (b *bubble) View() string {
	v := b.value
	inner := b.width - paddingStyle.GetHorizontalPadding()

	lines := []string{
		style.Title(truncate.StringWithTail(b.options.Title, uint(max(inner-2, 1)), "…")),
		"",
		b.viewProgress(v),
		b.viewFlags(v),
		"",
		b.viewCaption(v, inner),
	}

	if msg, ok := v.Error.Get(); ok {
		lines = append(lines, "", style.ErrorTitle("Playback error"), errorStyle.Render(wrap.String(msg, inner)))
	} else if msg, ok := b.lastError.Get(); ok {
		lines = append(lines, "", errorStyle.Render(wrap.String(msg, inner)))
	}

	lines = append(lines, "", b.helpC.View(b.keymap))

	return paddingStyle.Render(strings.Join(lines, "\n"))
}

func (b *bubble) viewProgress(v playback.Value) string {
	var ratio float64
	if v.Duration > 0 {
		ratio = float64(v.Position) / float64(v.Duration)
	}

	times := fmt.Sprintf("%s / %s", util.FormatDuration(v.Position), util.FormatDuration(v.Duration))
	return b.progressC.ViewAs(ratio) + " " + style.Faint(times)
}

func (b *bubble) viewFlags(v playback.Value) string {
	var flags []string

	switch {
	case !v.IsInitialized && !v.HasError():
		flags = append(flags, icon.Get(icon.Progress)+" loading")
	case v.IsCompleted:
		flags = append(flags, style.Fg(color.Green)(icon.Get(icon.Success)+" completed"))
	case v.IsPlaying:
		flags = append(flags, icon.Get(icon.Play)+" playing")
	default:
		flags = append(flags, icon.Get(icon.Pause)+" paused")
	}

	if v.IsBuffering {
		flags = append(flags, style.Fg(color.Yellow)(icon.Get(icon.Buffering)+" buffering"))
	}
	if v.IsLooping {
		flags = append(flags, style.Fg(color.Cyan)(icon.Get(icon.Loop)+" looping"))
	}

	flags = append(flags,
		style.Faint(fmt.Sprintf("vol %d%%", int(v.Volume*100+0.5))),
		style.Faint(fmt.Sprintf("speed %.2gx", v.PlaybackSpeed)),
	)
	if v.CaptionOffset != 0 {
		flags = append(flags, style.Faint(fmt.Sprintf("captions %+.2fs", v.CaptionOffset.Seconds())))
	}

	return strings.Join(flags, "  ")
}

func (b *bubble) viewCaption(v playback.Value, width int) string {
	if v.Caption.IsEmpty() {
		return ""
	}
	return captionStyle.Render(wrap.String(v.Caption.Text, max(width, 1)))
}
