package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeMPV speaks enough of the JSON-IPC protocol to drive a session.
type fakeMPV struct {
	socketPath string
	ln         net.Listener

	mu       sync.Mutex
	props    map[string]any
	watchers []net.Conn
	observed chan string
}

func newFakeMPV(t *testing.T) *fakeMPV {
	dir, err := os.MkdirTemp("", "cpipc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	f := &fakeMPV{
		socketPath: filepath.Join(dir, "mpv.sock"),
		props: map[string]any{
			"duration": 90.0,
			"width":    1920.0,
			"height":   1080.0,
			"time-pos": 12.5,
		},
		observed: make(chan string, 16),
	}

	f.ln, err = net.Listen("unix", f.socketPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = f.ln.Close() })

	go func() {
		for {
			conn, err := f.ln.Accept()
			if err != nil {
				return
			}
			go f.serve(conn)
		}
	}()

	return f
}

func (f *fakeMPV) write(conn net.Conn, v any) {
	b, _ := json.Marshal(v)
	f.mu.Lock()
	defer f.mu.Unlock()
	_, _ = conn.Write(append(b, '\n'))
}

func (f *fakeMPV) serve(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req ipcRequest
		if json.Unmarshal(scanner.Bytes(), &req) != nil || len(req.Command) == 0 {
			continue
		}

		reply := map[string]any{"request_id": req.RequestID, "error": "success"}

		switch req.Command[0] {
		case "observe_property":
			f.mu.Lock()
			f.watchers = append(f.watchers, conn)
			f.mu.Unlock()
			f.observed <- fmt.Sprint(req.Command[2])
			continue
		case "get_property":
			// interleave a broadcast event ahead of the reply
			f.write(conn, map[string]any{"event": "playback-restart"})

			f.mu.Lock()
			v, ok := f.props[fmt.Sprint(req.Command[1])]
			f.mu.Unlock()
			if ok {
				reply["data"] = v
			} else {
				reply["error"] = "property unavailable"
			}
		case "set_property":
			f.mu.Lock()
			f.props[fmt.Sprint(req.Command[1])] = req.Command[2]
			f.mu.Unlock()
		}

		f.write(conn, reply)
	}
}

// push sends an event to every connection that registered observers.
func (f *fakeMPV) push(line string) {
	f.mu.Lock()
	watchers := append([]net.Conn(nil), f.watchers...)
	f.mu.Unlock()

	for _, c := range watchers {
		f.mu.Lock()
		_, _ = c.Write([]byte(line + "\n"))
		f.mu.Unlock()
	}
}

func (f *fakeMPV) hangUp() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.watchers {
		_ = c.Close()
	}
}

func (f *fakeMPV) prop(name string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.props[name]
}

func next(ch <-chan Event) (Event, bool) {
	select {
	case ev, ok := <-ch:
		return ev, ok
	case <-time.After(2 * time.Second):
		return Event{Type: -1}, false
	}
}

func TestIPC(t *testing.T) {
	Convey("Given a fake mpv socket", t, func() {
		f := newFakeMPV(t)
		c := &ipc{socketPath: f.socketPath}
		ctx := context.Background()

		Convey("Replies are matched past interleaved events", func() {
			pos, err := c.float(ctx, "time-pos")
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 12.5)
		})

		Convey("mpv errors are surfaced without retries", func() {
			_, err := c.float(ctx, "chapter-list")
			var cmdErr *CommandError
			So(errors.As(err, &cmdErr), ShouldBeTrue)
			So(cmdErr.Message, ShouldEqual, "property unavailable")
		})

		Convey("Properties can be set", func() {
			So(c.set(ctx, "volume", 40.0), ShouldBeNil)
			So(f.prop("volume"), ShouldEqual, 40.0)
		})

		Convey("A missing socket fails after retries", func() {
			bad := &ipc{socketPath: f.socketPath + ".gone"}
			_, err := bad.command(ctx, "get_property", "pid")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSessionEvents(t *testing.T) {
	Convey("Given a session attached to a fake mpv", t, func() {
		f := newFakeMPV(t)
		s := newSession(f.socketPath)
		defer s.close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		So(s.listen(ctx), ShouldBeNil)
		for range observed {
			select {
			case <-f.observed:
			case <-time.After(2 * time.Second):
				t.Fatal("observers were not registered")
			}
		}

		events, err := s.subscribe(ctx)
		So(err, ShouldBeNil)

		Convey("A second subscriber is refused", func() {
			_, err := s.subscribe(ctx)
			So(err, ShouldNotBeNil)
		})

		Convey("Property changes and readiness arrive in order", func() {
			f.push(`{"event":"property-change","id":1,"name":"pause","data":false}`)
			f.push(`{"event":"file-loaded"}`)

			ev, ok := next(events)
			So(ok, ShouldBeTrue)
			So(ev.Type, ShouldEqual, PlayingStateUpdate)
			So(ev.IsPlaying, ShouldBeTrue)

			ev, ok = next(events)
			So(ok, ShouldBeTrue)
			So(ev.Type, ShouldEqual, Ready)
			So(ev.Duration, ShouldEqual, 90*time.Second)
			So(ev.Size, ShouldResemble, Size{Width: 1920, Height: 1080})
			So(ev.RotationCorrection, ShouldEqual, 0)
		})

		Convey("A load failure is a terminal error", func() {
			f.push(`{"event":"end-file","reason":"error","file_error":"loading failed"}`)

			ev, ok := next(events)
			So(ok, ShouldBeTrue)
			So(ev.Err, ShouldNotBeNil)
			So(ev.Err.Error(), ShouldContainSubstring, "loading failed")
		})

		Convey("Losing the connection reports an exit and ends the stream", func() {
			f.hangUp()

			ev, ok := next(events)
			So(ok, ShouldBeTrue)
			So(errors.Is(ev.Err, ErrExited), ShouldBeTrue)

			_, ok = next(events)
			So(ok, ShouldBeFalse)
		})

		Convey("Closing the session ends the stream quietly", func() {
			s.close()
			_, ok := next(events)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestServiceHandles(t *testing.T) {
	Convey("Unknown handles are rejected", t, func() {
		m := NewMPV()
		ctx := context.Background()

		So(errors.Is(m.Play(ctx, 42), ErrUnknownHandle), ShouldBeTrue)
		So(errors.Is(m.Dispose(ctx, 42), ErrUnknownHandle), ShouldBeTrue)
		_, err := m.Position(ctx, 42)
		So(errors.Is(err, ErrUnknownHandle), ShouldBeTrue)
	})

	Convey("Create fails cleanly when mpv is missing", t, func() {
		m := NewMPV(WithBinary("/nonexistent/mpv"))
		_, err := m.Create(context.Background(), FileDescriptor{URI: "/media/v.mp4"})
		So(err, ShouldNotBeNil)
	})
}
