package caption

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTrackAt(t *testing.T) {
	Convey("Given captions a (0-2s) and b (5-7s)", t, func() {
		track := &Track{Captions: []Caption{
			{Number: 1, Start: 0, End: 2 * time.Second, Text: "a"},
			{Number: 2, Start: 5 * time.Second, End: 7 * time.Second, Text: "b"},
		}}

		Convey("With no offset", func() {
			So(track.At(1*time.Second, 0).Text, ShouldEqual, "a")
			So(track.At(3*time.Second, 0).IsEmpty(), ShouldBeTrue)
			So(track.At(6*time.Second, 0).Text, ShouldEqual, "b")
		})

		Convey("Bounds are inclusive", func() {
			So(track.At(2*time.Second, 0).Text, ShouldEqual, "a")
			So(track.At(5*time.Second, 0).Text, ShouldEqual, "b")
		})

		Convey("A negative offset delays the lookup position", func() {
			So(track.At(3*time.Second, -2*time.Second).Text, ShouldEqual, "a")
		})

		Convey("A positive offset advances it", func() {
			So(track.At(3*time.Second, 2*time.Second).Text, ShouldEqual, "b")
		})
	})

	Convey("Overlapping captions resolve to the first in insertion order", t, func() {
		track := &Track{Captions: []Caption{
			{Start: 0, End: 10 * time.Second, Text: "long"},
			{Start: 2 * time.Second, End: 3 * time.Second, Text: "short"},
		}}
		So(track.At(2500*time.Millisecond, 0).Text, ShouldEqual, "long")
	})

	Convey("A nil track yields the empty caption", t, func() {
		var track *Track
		So(track.At(time.Second, 0).IsEmpty(), ShouldBeTrue)
		So(track.Len(), ShouldEqual, 0)
	})
}
