package player

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTranslateProperty(t *testing.T) {
	Convey("Property changes map onto platform events", t, func() {
		ev, ok := translateProperty("pause", json.RawMessage(`false`))
		So(ok, ShouldBeTrue)
		So(ev.Type, ShouldEqual, PlayingStateUpdate)
		So(ev.IsPlaying, ShouldBeTrue)

		ev, ok = translateProperty("eof-reached", json.RawMessage(`true`))
		So(ok, ShouldBeTrue)
		So(ev.Type, ShouldEqual, Completed)

		_, ok = translateProperty("eof-reached", json.RawMessage(`false`))
		So(ok, ShouldBeFalse)

		ev, _ = translateProperty("paused-for-cache", json.RawMessage(`true`))
		So(ev.Type, ShouldEqual, BufferingStart)
		ev, _ = translateProperty("paused-for-cache", json.RawMessage(`false`))
		So(ev.Type, ShouldEqual, BufferingEnd)

		ev, ok = translateProperty("demuxer-cache-state", json.RawMessage(
			`{"seekable-ranges":[{"start":0,"end":12.5},{"start":30,"end":31}]}`,
		))
		So(ok, ShouldBeTrue)
		So(ev.Type, ShouldEqual, BufferingUpdate)
		So(ev.Buffered, ShouldResemble, []Range{
			{Start: 0, End: 12500 * time.Millisecond},
			{Start: 30 * time.Second, End: 31 * time.Second},
		})

		_, ok = translateProperty("volume", json.RawMessage(`50`))
		So(ok, ShouldBeFalse)

		_, ok = translateProperty("pause", json.RawMessage(`null`))
		So(ok, ShouldBeFalse)
	})
}

func TestEventTypeString(t *testing.T) {
	Convey("Event types have readable names", t, func() {
		So(Ready.String(), ShouldEqual, "ready")
		So(PlayingStateUpdate.String(), ShouldEqual, "playing-state-update")
		So(EventType(99).String(), ShouldEqual, "unknown")
	})
}
