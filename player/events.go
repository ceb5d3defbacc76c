package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/cachedplayer/cachedplayer/log"
)

// observed lists the properties mpv reports changes for.
// observe_property is scoped to the connection that issued it.
var observed = []string{
	"pause",
	"eof-reached",
	"paused-for-cache",
	"demuxer-cache-state",
}

const eventBuffer = 64

// listen opens the persistent event connection, registers the observers on it
// and starts the read loop.
func (s *session) listen(ctx context.Context) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", s.ipc.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		payload, _ := json.Marshal(ipcRequest{Command: []any{"observe_property", i + 1, name}})
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	s.conn = conn
	go s.readLoop()

	log.Debugf("mpv event listener started on %s", s.ipc.socketPath)
	return nil
}

// readLoop translates mpv events into platform events until the connection closes.
// It is the only sender on s.events and closes it on exit.
func (s *session) readLoop() {
	defer close(s.events)

	reader := bufio.NewReader(s.conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			select {
			case <-s.done:
			default:
				log.Warnf("mpv event stream ended: %v", err)
				s.emit(Event{Err: ErrExited})
			}
			return
		}

		var msg ipcMessage
		if err := json.Unmarshal(line, &msg); err != nil || msg.Event == "" {
			continue
		}

		if ev, ok := s.translate(msg); ok {
			s.emit(ev)
		}
	}
}

func (s *session) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// translate maps one mpv event onto a platform event. Events with no platform meaning are dropped.
func (s *session) translate(msg ipcMessage) (Event, bool) {
	switch msg.Event {
	case "file-loaded":
		return s.readyEvent(), true
	case "end-file":
		if msg.Reason != "error" {
			return Event{}, false
		}
		reason := msg.FileError
		if reason == "" {
			reason = "unknown error"
		}
		return Event{Err: fmt.Errorf("mpv failed to load media: %s", reason)}, true
	case "property-change":
		return translateProperty(msg.Name, msg.Data)
	default:
		return Event{}, false
	}
}

type cacheState struct {
	SeekableRanges []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"seekable-ranges"`
}

func translateProperty(name string, data json.RawMessage) (Event, bool) {
	switch name {
	case "pause":
		paused, ok := decodeBool(data)
		if !ok {
			return Event{}, false
		}
		return Event{Type: PlayingStateUpdate, IsPlaying: !paused}, true
	case "eof-reached":
		if eof, _ := decodeBool(data); !eof {
			return Event{}, false
		}
		return Event{Type: Completed}, true
	case "paused-for-cache":
		buffering, ok := decodeBool(data)
		if !ok {
			return Event{}, false
		}
		if buffering {
			return Event{Type: BufferingStart}, true
		}
		return Event{Type: BufferingEnd}, true
	case "demuxer-cache-state":
		var state cacheState
		if json.Unmarshal(data, &state) != nil {
			return Event{}, false
		}
		ranges := make([]Range, 0, len(state.SeekableRanges))
		for _, r := range state.SeekableRanges {
			ranges = append(ranges, Range{Start: seconds(r.Start), End: seconds(r.End)})
		}
		return Event{Type: BufferingUpdate, Buffered: ranges}, true
	default:
		return Event{}, false
	}
}

// decodeBool reports false for null, which mpv sends while a property is unavailable.
func decodeBool(data json.RawMessage) (value, ok bool) {
	var v *bool
	if json.Unmarshal(data, &v) != nil || v == nil {
		return false, false
	}
	return *v, true
}

// readyEvent collects the media properties reported with readiness.
// Properties mpv cannot provide (duration of live streams, size of audio) stay zero.
// The size is the decoded one: dwidth and dheight stay unset until the first video-reconfig.
func (s *session) readyEvent() Event {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	ev := Event{Type: Ready}

	if d, err := s.ipc.float(ctx, "duration"); err == nil {
		ev.Duration = seconds(d)
	}
	if w, err := s.ipc.float(ctx, "width"); err == nil {
		ev.Size.Width = w
	}
	if h, err := s.ipc.float(ctx, "height"); err == nil {
		ev.Size.Height = h
	}
	if r, err := s.ipc.float(ctx, "video-params/rotate"); err == nil {
		ev.RotationCorrection = int(r)
	}

	return ev
}

// subscribe forwards session events to a channel bound to ctx.
func (s *session) subscribe(ctx context.Context) (<-chan Event, error) {
	if !s.subscribed.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("session already has a subscriber")
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-s.events:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
