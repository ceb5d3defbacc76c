package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cachedplayer/cachedplayer/caption"
	"github.com/cachedplayer/cachedplayer/lifecycle"
	"github.com/cachedplayer/cachedplayer/playback"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeController struct {
	mu    sync.Mutex
	value playback.Value
	calls []string
	err   error
}

func (f *fakeController) record(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.err
}

func (f *fakeController) Value() playback.Value { return f.value }
func (f *fakeController) AddListener(func(playback.Value)) playback.ListenerID { return 1 }
func (f *fakeController) RemoveListener(playback.ListenerID) {}
func (f *fakeController) Play(context.Context) error { return f.record("play") }
func (f *fakeController) Pause(context.Context) error { return f.record("pause") }
func (f *fakeController) SeekTo(_ context.Context, p time.Duration) error {
	return f.record("seek:%s", p)
}
func (f *fakeController) SetVolume(_ context.Context, v float64) error {
	return f.record("volume:%.1f", v)
}
func (f *fakeController) SetPlaybackSpeed(_ context.Context, s float64) error {
	return f.record("speed:%g", s)
}
func (f *fakeController) SetLooping(_ context.Context, l bool) error {
	return f.record("looping:%t", l)
}
func (f *fakeController) SetCaptionOffset(_ context.Context, o time.Duration) error {
	return f.record("offset:%s", o)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds a key to the model and executes the resulting command inline.
func press(b *bubble, msg tea.KeyMsg) tea.Msg {
	_, cmd := b.Update(msg)
	if cmd == nil {
		return nil
	}
	out := cmd()
	if out != nil {
		b.Update(out)
	}
	return out
}

func TestKeys(t *testing.T) {
	Convey("Given a view over a paused, ready controller", t, func() {
		v := playback.NewValue()
		v.IsInitialized = true
		v.Duration = time.Minute
		v.Position = 3 * time.Second
		v.Volume = 0.5
		ctrl := &fakeController{value: v}
		b := newBubble(context.Background(), ctrl, Options{Title: "clip.mp4"})

		Convey("Space plays when paused and pauses when playing", func() {
			press(b, runes(" "))
			b.Update(snapshotMsg(func() playback.Value { v.IsPlaying = true; return v }()))
			press(b, runes(" "))
			So(ctrl.calls, ShouldResemble, []string{"play", "pause"})
		})

		Convey("Seeking backwards stops at zero", func() {
			press(b, tea.KeyMsg{Type: tea.KeyLeft})
			press(b, tea.KeyMsg{Type: tea.KeyRight})
			So(ctrl.calls, ShouldResemble, []string{"seek:0s", "seek:8s"})
		})

		Convey("Volume, speed, looping and caption offset keys", func() {
			press(b, tea.KeyMsg{Type: tea.KeyUp})
			press(b, tea.KeyMsg{Type: tea.KeyDown})
			press(b, runes("+"))
			press(b, runes("-"))
			press(b, runes("l"))
			press(b, runes("]"))
			press(b, runes("["))
			So(ctrl.calls, ShouldResemble, []string{
				"volume:0.6", "volume:0.4",
				"speed:1.25", "speed:0.75",
				"looping:true",
				"offset:250ms", "offset:-250ms",
			})
		})

		Convey("A rejected action is shown until the next key", func() {
			ctrl.err = errors.New("invalid playback speed")
			press(b, runes("-"))
			So(b.View(), ShouldContainSubstring, "invalid playback speed")

			ctrl.err = nil
			press(b, tea.KeyMsg{Type: tea.KeyRight})
			So(b.View(), ShouldNotContainSubstring, "invalid playback speed")
		})

		Convey("q quits without touching the controller", func() {
			_, cmd := b.Update(runes("q"))
			So(cmd, ShouldNotBeNil)
			So(cmd(), ShouldResemble, tea.Quit())
			So(ctrl.calls, ShouldBeEmpty)
		})
	})
}

func TestSnapshots(t *testing.T) {
	Convey("Given a view", t, func() {
		ctrl := &fakeController{value: playback.NewValue()}
		b := newBubble(context.Background(), ctrl, Options{Title: "clip.mp4", ExitOnComplete: true})

		Convey("The caption and flags follow the latest snapshot", func() {
			v := playback.NewValue()
			v.IsInitialized = true
			v.IsBuffering = true
			v.Duration = time.Minute
			v.Caption = caption.Caption{Number: 1, Text: "hello there"}
			b.Update(snapshotMsg(v))

			view := b.View()
			So(view, ShouldContainSubstring, "hello there")
			So(view, ShouldContainSubstring, "buffering")
			So(view, ShouldContainSubstring, "clip.mp4")
		})

		Convey("A platform error is rendered as a banner", func() {
			v := playback.NewValue()
			v.Error = mo.Some("platform events: end of file: broken")
			b.Update(snapshotMsg(v))
			So(b.View(), ShouldContainSubstring, "broken")
		})

		Convey("Completion quits when asked to", func() {
			v := playback.NewValue()
			v.IsInitialized = true
			v.IsCompleted = true
			_, cmd := b.Update(snapshotMsg(v))
			So(cmd, ShouldNotBeNil)
		})

		Convey("Completion while looping keeps the view open", func() {
			v := playback.NewValue()
			v.IsCompleted = true
			v.IsLooping = true
			_, cmd := b.Update(snapshotMsg(v))
			So(cmd, ShouldBeNil)
		})
	})
}

func TestFocus(t *testing.T) {
	Convey("Given a view reporting to a lifecycle notifier", t, func() {
		n := lifecycle.NewNotifier()
		var seen []lifecycle.State
		cancel := n.Subscribe(func(s lifecycle.State) { seen = append(seen, s) })
		defer cancel()

		b := newBubble(context.Background(), &fakeController{value: playback.NewValue()}, Options{Lifecycle: n})

		Convey("Blur and focus are forwarded once each", func() {
			b.Update(tea.BlurMsg{})
			b.Update(tea.BlurMsg{})
			b.Update(tea.FocusMsg{})
			So(seen, ShouldResemble, []lifecycle.State{lifecycle.Background, lifecycle.Foreground})
		})
	})
}
