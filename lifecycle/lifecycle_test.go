package lifecycle

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNotifier(t *testing.T) {
	Convey("Given a notifier with a subscriber", t, func() {
		n := NewNotifier()
		var got []State
		cancel := n.Subscribe(func(s State) { got = append(got, s) })

		So(n.State(), ShouldEqual, Foreground)

		Convey("Transitions are delivered", func() {
			n.Notify(Background)
			n.Notify(Foreground)
			So(got, ShouldResemble, []State{Background, Foreground})
		})

		Convey("Repeated states are dropped", func() {
			n.Notify(Background)
			n.Notify(Background)
			n.Notify(Foreground)
			n.Notify(Foreground)
			So(got, ShouldResemble, []State{Background, Foreground})
		})

		Convey("Cancelled subscribers are not called", func() {
			cancel()
			cancel()
			n.Notify(Background)
			So(got, ShouldBeEmpty)
		})

		Convey("Subscribers may unsubscribe during dispatch", func() {
			var second int
			var cancelSecond func()
			cancelSecond = n.Subscribe(func(State) {
				second++
				cancelSecond()
			})

			n.Notify(Background)
			n.Notify(Foreground)
			So(second, ShouldEqual, 1)
			So(got, ShouldHaveLength, 2)
		})
	})

	Convey("States have names", t, func() {
		So(Background.String(), ShouldEqual, "background")
		So(Foreground.String(), ShouldEqual, "foreground")
	})
}
