package playback

import (
	"errors"
	"testing"
	"time"

	"github.com/cachedplayer/cachedplayer/caption"
	"github.com/cachedplayer/cachedplayer/player"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValueApply(t *testing.T) {
	Convey("Given a snapshot with an error", t, func() {
		v := NewValue().Apply(Update{Error: Set("boom"), Position: mo.Some(3 * time.Second)})
		So(v.HasError(), ShouldBeTrue)

		Convey("Absent fields are kept", func() {
			next := v.Apply(Update{Volume: mo.Some(0.5)})
			So(next.Volume, ShouldEqual, 0.5)
			So(next.Position, ShouldEqual, 3*time.Second)
			So(next.Error.MustGet(), ShouldEqual, "boom")
		})

		Convey("Errors can be replaced", func() {
			next := v.Apply(Update{Error: Set("worse")})
			So(next.Error.MustGet(), ShouldEqual, "worse")
		})

		Convey("Errors can be cleared", func() {
			next := v.Apply(Update{Error: Clear[string]()})
			So(next.HasError(), ShouldBeFalse)
		})

		Convey("The original is not modified", func() {
			v.Apply(Update{Position: mo.Some(time.Second), Error: Clear[string]()})
			So(v.Position, ShouldEqual, 3*time.Second)
			So(v.HasError(), ShouldBeTrue)
		})
	})

	Convey("Buffered ranges are copied", t, func() {
		ranges := []player.Range{{Start: 0, End: time.Second}}
		v := NewValue().Apply(Update{Buffered: mo.Some(ranges)})
		ranges[0].End = time.Hour
		So(v.Buffered[0].End, ShouldEqual, time.Second)
	})

	Convey("Aspect ratio", t, func() {
		So(NewValue().AspectRatio(), ShouldEqual, 1.0)
		v := NewValue().Apply(Update{Size: mo.Some(player.Size{Width: 1920, Height: 1080})})
		So(v.AspectRatio(), ShouldAlmostEqual, 16.0/9.0, 0.0001)
		v = NewValue().Apply(Update{Size: mo.Some(player.Size{Width: 1920, Height: -1})})
		So(v.AspectRatio(), ShouldEqual, 1.0)
	})

	Convey("New snapshots have unit volume and speed", t, func() {
		v := NewValue()
		So(v.Volume, ShouldEqual, 1.0)
		So(v.PlaybackSpeed, ShouldEqual, 1.0)
		So(v.IsInitialized, ShouldBeFalse)
	})
}

func TestTransition(t *testing.T) {
	track := &caption.Track{Captions: []caption.Caption{
		{Number: 1, Start: 0, End: 2 * time.Second, Text: "a"},
		{Number: 2, Start: 9 * time.Second, End: 10 * time.Second, Text: "end"},
	}}

	Convey("Given an errored snapshot", t, func() {
		v := NewValue().Apply(Update{Error: Set("old"), IsCompleted: mo.Some(true)})

		Convey("Ready initializes it and clears the error", func() {
			next := transition(v, player.Event{
				Type:               player.Ready,
				Duration:           10 * time.Second,
				Size:               player.Size{Width: 640, Height: 480},
				RotationCorrection: 90,
			}, track)
			So(next.IsInitialized, ShouldBeTrue)
			So(next.HasError(), ShouldBeFalse)
			So(next.IsCompleted, ShouldBeFalse)
			So(next.Duration, ShouldEqual, 10*time.Second)
			So(next.RotationCorrection, ShouldEqual, 90)
		})
	})

	Convey("Given a playing, initialized snapshot", t, func() {
		v := NewValue().Apply(Update{
			IsInitialized: mo.Some(true),
			IsPlaying:     mo.Some(true),
			Duration:      mo.Some(10 * time.Second),
		})

		Convey("Errors uninitialize it", func() {
			next := transition(v, player.Event{Err: errors.New("decoder died")}, track)
			So(next.IsInitialized, ShouldBeFalse)
			So(next.Error.MustGet(), ShouldContainSubstring, "decoder died")
		})

		Convey("Completion moves to the end and stops", func() {
			next := transition(v, player.Event{Type: player.Completed}, track)
			So(next.IsCompleted, ShouldBeTrue)
			So(next.IsPlaying, ShouldBeFalse)
			So(next.Position, ShouldEqual, 10*time.Second)
			So(next.Caption.Text, ShouldEqual, "end")
		})

		Convey("Completion is ignored while looping", func() {
			looping := v.Apply(Update{IsLooping: mo.Some(true)})
			So(transition(looping, player.Event{Type: player.Completed}, track), ShouldResemble, looping)
		})

		Convey("Buffering events toggle the flag and ranges", func() {
			next := transition(v, player.Event{Type: player.BufferingStart}, track)
			So(next.IsBuffering, ShouldBeTrue)
			next = transition(next, player.Event{Type: player.BufferingEnd}, track)
			So(next.IsBuffering, ShouldBeFalse)
			next = transition(next, player.Event{
				Type:     player.BufferingUpdate,
				Buffered: []player.Range{{Start: 0, End: 4 * time.Second}},
			}, track)
			So(next.Buffered, ShouldHaveLength, 1)
		})

		Convey("Resuming clears completion, pausing does not set it", func() {
			done := v.Apply(Update{IsCompleted: mo.Some(true)})
			next := transition(done, player.Event{Type: player.PlayingStateUpdate, IsPlaying: true}, track)
			So(next.IsCompleted, ShouldBeFalse)

			next = transition(v, player.Event{Type: player.PlayingStateUpdate, IsPlaying: false}, track)
			So(next.IsPlaying, ShouldBeFalse)
			So(next.IsCompleted, ShouldBeFalse)
		})

		Convey("Unknown events change nothing", func() {
			So(transition(v, player.Event{Type: player.Unknown}, track), ShouldResemble, v)
		})
	})
}
