package playback

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cachedplayer/cachedplayer/internal/cache"
	"github.com/cachedplayer/cachedplayer/player"
)

// fakeService records every call and replays events pushed by the test.
type fakeService struct {
	mu         sync.Mutex
	calls      []string
	descriptor player.Descriptor
	position   time.Duration
	createErr  error
	createGate chan struct{}

	events   chan player.Event
	disposed atomic.Int32
}

func newFakeService() *fakeService {
	return &fakeService{events: make(chan player.Event, 16)}
}

func (f *fakeService) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeService) SetPosition(p time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = p
}

func (f *fakeService) Create(ctx context.Context, d player.Descriptor) (player.Handle, error) {
	if f.createGate != nil {
		select {
		case <-f.createGate:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	f.mu.Lock()
	f.descriptor = d
	f.mu.Unlock()
	f.record("create")

	if f.createErr != nil {
		return 0, f.createErr
	}
	return 7, nil
}

func (f *fakeService) Dispose(_ context.Context, h player.Handle) error {
	f.disposed.Add(1)
	f.record("dispose:%d", h)
	return nil
}

func (f *fakeService) Play(context.Context, player.Handle) error {
	f.record("play")
	return nil
}

func (f *fakeService) Pause(context.Context, player.Handle) error {
	f.record("pause")
	return nil
}

func (f *fakeService) SeekTo(_ context.Context, _ player.Handle, p time.Duration) error {
	f.record("seek:%s", p)
	return nil
}

func (f *fakeService) SetVolume(_ context.Context, _ player.Handle, v float64) error {
	f.record("volume:%g", v)
	return nil
}

func (f *fakeService) SetPlaybackSpeed(_ context.Context, _ player.Handle, s float64) error {
	f.record("speed:%g", s)
	return nil
}

func (f *fakeService) SetLooping(_ context.Context, _ player.Handle, l bool) error {
	f.record("looping:%t", l)
	return nil
}

func (f *fakeService) Position(context.Context, player.Handle) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, nil
}

func (f *fakeService) Events(ctx context.Context, _ player.Handle) (<-chan player.Event, error) {
	out := make(chan player.Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-f.events:
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

// fakeCache serves every source from a fixed path when hit is set.
type fakeCache struct {
	hit     bool
	removed []string
}

func (c *fakeCache) Resolve(_ context.Context, rawURL string, _ map[string]string) cache.Resolution {
	if c.hit {
		return cache.Resolution{UseCached: true, Path: "/cache/media/abc.mp4"}
	}
	return cache.Resolution{}
}

func (c *fakeCache) Remove(rawURL string) error {
	c.removed = append(c.removed, rawURL)
	return nil
}

// eventually polls cond until it holds or a second passes.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
