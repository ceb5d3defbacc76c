// Package playback drives a platform video session and exposes its state as a stream of
// immutable snapshots. Network sources are transparently served from the local media
// cache when a fresh copy exists.
package playback

import (
	"context"
	"sync"

	"github.com/cachedplayer/cachedplayer/caption"
	"github.com/cachedplayer/cachedplayer/log"
	"github.com/cachedplayer/cachedplayer/player"
	"github.com/cachedplayer/cachedplayer/source"
	"github.com/cachedplayer/cachedplayer/util"
	"github.com/samber/mo"
)

// State is the controller lifecycle state.
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	Errored
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Errored:
		return "errored"
	default:
		return "disposed"
	}
}

// Controller plays one DataSource on a platform video service.
//
// Mutators called before the controller is Ready, or after it is disposed, return nil
// without side effects. Platform calls are never made while holding the state lock.
type Controller struct {
	svc    player.Service
	src    source.DataSource
	opts   options
	logger log.Entry

	// ctx scopes platform calls made on the controller's behalf. Cancelled by Dispose.
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State
	value      Value
	track      *caption.Track
	handle     player.Handle
	hasHandle  bool
	poller     *poller
	wasPlaying bool
	stopEvents context.CancelFunc

	created     chan struct{}
	createdOnce sync.Once
	ready       chan struct{}
	readyOnce   sync.Once
	initErr     error // written once, before ready is closed
	disposed    chan struct{}
	disposeOnce sync.Once
	disposeErr  error
	done        chan struct{}

	unsubscribe func()
	wg          sync.WaitGroup

	listenersMu  sync.Mutex
	listeners    []listener
	nextListener ListenerID
}

// New returns an uninitialized controller for src.
func New(svc player.Service, src source.DataSource, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		svc:      svc,
		src:      src,
		opts:     o,
		logger:   log.With(log.Fields{"source": src.String()}),
		ctx:      ctx,
		cancel:   cancel,
		created:  make(chan struct{}),
		ready:    make(chan struct{}),
		disposed: make(chan struct{}),
		done:     make(chan struct{}),
	}

	c.value = NewValue().Apply(Update{
		Volume:        mo.Some(util.Clamp(o.volume, 0, 1)),
		PlaybackSpeed: mo.Some(o.speed),
		IsLooping:     mo.Some(o.looping),
		CaptionOffset: mo.Some(o.captionOffset),
	})
	c.poller = &poller{clock: o.clock, interval: o.pollInterval, wg: &c.wg}

	if o.lifecycle != nil && !o.backgroundPlayback {
		c.unsubscribe = o.lifecycle.Subscribe(c.onLifecycle)
	}

	return c
}

// Value returns the current snapshot.
func (c *Controller) Value() Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Source returns the source this controller plays.
func (c *Controller) Source() source.DataSource {
	return c.src
}

// Created is closed once session creation has finished, successfully or not,
// or when a controller that never started initializing is disposed.
func (c *Controller) Created() <-chan struct{} {
	return c.created
}

// Done is closed once Dispose has torn the session down and every goroutine the
// controller started has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Ready is closed when the platform reports the first terminal event: ready or error.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// Initialize resolves the effective source, creates the platform session and waits until
// the session is ready. A platform failure is returned as a *PlatformError and recorded in the snapshot.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case Uninitialized:
		c.state = Initializing
	case Disposed:
		c.mu.Unlock()
		return ErrDisposed
	default:
		c.mu.Unlock()
		return ErrAlreadyInitialized
	}
	c.mu.Unlock()

	c.logger.Debug("initializing")

	if err := c.createSession(ctx); err != nil {
		return err
	}

	if c.src.Caption != nil {
		c.loadInitialCaption(ctx)
	}

	select {
	case <-c.ready:
		return c.initErr
	case <-c.disposed:
		return ErrDisposed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// createSession requests the platform session and attaches the event stream.
// Created stays open until both are recorded, so Dispose always sees them.
func (c *Controller) createSession(ctx context.Context) error {
	defer c.markCreated()

	desc := c.descriptor(ctx)

	h, err := c.svc.Create(ctx, desc)
	if err != nil {
		return c.fail(&PlatformError{Op: "create", Err: err})
	}

	c.mu.Lock()
	c.handle, c.hasHandle = h, true
	c.mu.Unlock()

	eventsCtx, stopEvents := context.WithCancel(c.ctx)
	events, err := c.svc.Events(eventsCtx, h)
	if err != nil {
		stopEvents()
		return c.fail(&PlatformError{Op: "subscribe", Err: err})
	}

	c.mu.Lock()
	c.stopEvents = stopEvents
	c.mu.Unlock()

	c.wg.Add(1)
	go c.consume(events)

	return nil
}

// descriptor builds the platform descriptor, preferring a fresh cached copy for network sources.
func (c *Controller) descriptor(ctx context.Context) player.Descriptor {
	src := c.src

	switch src.Kind {
	case source.KindNetwork:
		if c.opts.cache != nil {
			if res := c.opts.cache.Resolve(ctx, src.URI, src.Headers); res.UseCached {
				c.logger.Infof("playing cached copy %s", res.Path)
				return player.FileDescriptor{URI: res.Path, FormatHint: src.FormatHint, Headers: src.Headers}
			}
		}
		return player.NetworkDescriptor{URI: src.URI, FormatHint: src.FormatHint, Headers: src.Headers}
	case source.KindFile:
		return player.FileDescriptor{URI: src.URI, FormatHint: src.FormatHint, Headers: src.Headers}
	case source.KindAsset:
		return player.AssetDescriptor{Asset: src.URI, Package: src.Package}
	default:
		return player.ContentDescriptor{URI: src.URI}
	}
}

func (c *Controller) loadInitialCaption(ctx context.Context) {
	track, err := c.src.Caption(ctx)
	if err != nil {
		c.logger.Warnf("caption track not loaded: %s", err)
		return
	}

	c.mu.Lock()
	if c.state == Disposed {
		c.mu.Unlock()
		return
	}
	c.track = track
	c.value = c.value.Apply(Update{Caption: mo.Some(track.At(c.value.Position, c.value.CaptionOffset))})
	v := c.value
	c.mu.Unlock()

	c.notify(v)
}

// fail records a session creation error and resolves initialization with it.
// Creation is over by then, so a listener reacting to the error may dispose.
func (c *Controller) fail(err *PlatformError) error {
	c.logger.Error(err)
	c.markCreated()

	c.mu.Lock()
	if c.state == Disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	c.state = Errored
	c.poller.stop()
	c.value = c.value.Apply(Update{IsInitialized: mo.Some(false), Error: Set(err.Error())})
	v := c.value
	c.mu.Unlock()

	c.resolve(err)
	c.notify(v)
	return err
}

func (c *Controller) markCreated() {
	c.createdOnce.Do(func() { close(c.created) })
}

// resolve settles the initialization result. Only the first call has any effect.
func (c *Controller) resolve(err error) {
	c.readyOnce.Do(func() {
		c.initErr = err
		close(c.ready)
	})
}

// consume applies platform events in emission order until the stream closes.
func (c *Controller) consume(events <-chan player.Event) {
	defer c.wg.Done()

	for ev := range events {
		c.handleEvent(ev)
	}
}

// handleEvent applies ev to the snapshot. Errored and Disposed are terminal: later events are dropped.
func (c *Controller) handleEvent(ev player.Event) {
	c.mu.Lock()
	if c.state == Disposed {
		c.mu.Unlock()
		return
	}
	if c.state == Errored {
		c.mu.Unlock()
		c.logger.Debugf("event %s after a platform error, dropped", ev.Type)
		return
	}

	prev := c.value
	c.value = transition(prev, ev, c.track)
	next := c.value
	h := c.handle

	switch {
	case ev.Err != nil:
		c.state = Errored
		c.poller.stop()
	case ev.Type == player.Ready:
		c.state = Ready
	case ev.Type == player.Completed && !prev.IsLooping:
		c.poller.stop()
	}
	c.mu.Unlock()

	c.notify(next)

	switch {
	case ev.Err != nil:
		c.logger.Errorf("platform error: %s", ev.Err)
		c.resolve(&PlatformError{Op: "events", Err: ev.Err})
	case ev.Type == player.Ready:
		c.logger.Debugf("ready, duration %s", next.Duration)
		c.applyIntent(next)
		c.resolve(nil)
	case ev.Type == player.Completed && prev.IsLooping:
		c.logger.Debug("completed while looping, ignored")
	case ev.Type == player.Completed:
		c.logger.Debug("completed")
		c.ignore(c.svc.SeekTo(c.ctx, h, next.Duration))
		c.ignore(c.svc.Pause(c.ctx, h))
	}
}

// applyIntent pushes settings the platform may have dropped before it was ready.
func (c *Controller) applyIntent(v Value) {
	c.mu.Lock()
	h := c.handle
	c.mu.Unlock()

	c.ignore(c.svc.SetLooping(c.ctx, h, v.IsLooping))
	c.ignore(c.svc.SetVolume(c.ctx, h, v.Volume))

	if c.opts.autoplay {
		c.ignore(c.Play(c.ctx))
	}
}

func (c *Controller) ignore(err error) {
	if err != nil && !c.isDisposed() {
		c.logger.Warn(err)
	}
}

func (c *Controller) isDisposed() bool {
	select {
	case <-c.disposed:
		return true
	default:
		return false
	}
}
