package playback

import (
	"context"
	"time"

	"github.com/cachedplayer/cachedplayer/caption"
	"github.com/cachedplayer/cachedplayer/player"
	"github.com/cachedplayer/cachedplayer/source"
	"github.com/cachedplayer/cachedplayer/util"
	"github.com/samber/mo"
)

// mutate applies fn to the snapshot if the controller is Ready and reports whether it did.
// fn runs under the lock and must not call into the platform.
func (c *Controller) mutate(fn func(v Value) Value) (Value, player.Handle, bool) {
	c.mu.Lock()
	if c.state != Ready {
		c.mu.Unlock()
		return Value{}, 0, false
	}
	c.value = fn(c.value)
	v, h := c.value, c.handle
	c.mu.Unlock()

	c.notify(v)
	return v, h, true
}

// platform wraps a failed platform call, dropping it if the controller was disposed meanwhile.
func (c *Controller) platform(op string, err error) error {
	if err == nil || c.isDisposed() {
		return nil
	}
	return &PlatformError{Op: op, Err: err}
}

// Play resumes playback, rewinding first if the position is at the end.
// The current speed is pushed along with it.
func (c *Controller) Play(ctx context.Context) error {
	var rewind bool

	v, h, ok := c.mutate(func(v Value) Value {
		u := Update{IsPlaying: mo.Some(true), IsCompleted: mo.Some(false)}
		if v.Duration > 0 && v.Position == v.Duration {
			rewind = true
			u.Position = mo.Some(time.Duration(0))
			u.Caption = mo.Some(c.track.At(0, v.CaptionOffset))
		}
		c.poller.start(c.poll)
		return v.Apply(u)
	})
	if !ok {
		return nil
	}

	if rewind {
		if err := c.svc.SeekTo(ctx, h, 0); err != nil {
			return c.platform("seek", err)
		}
	}

	if err := c.svc.Play(ctx, h); err != nil {
		return c.platform("play", err)
	}

	return c.platform("speed", c.svc.SetPlaybackSpeed(ctx, h, v.PlaybackSpeed))
}

// Pause stops playback and the position poller.
func (c *Controller) Pause(ctx context.Context) error {
	_, h, ok := c.mutate(func(v Value) Value {
		c.poller.stop()
		return v.Apply(Update{IsPlaying: mo.Some(false)})
	})
	if !ok {
		return nil
	}

	return c.platform("pause", c.svc.Pause(ctx, h))
}

// SetLooping switches looping on or off.
func (c *Controller) SetLooping(ctx context.Context, looping bool) error {
	_, h, ok := c.mutate(func(v Value) Value {
		return v.Apply(Update{IsLooping: mo.Some(looping)})
	})
	if !ok {
		return nil
	}

	return c.platform("looping", c.svc.SetLooping(ctx, h, looping))
}

// SeekTo moves to position, clamped into [0, duration].
func (c *Controller) SeekTo(ctx context.Context, position time.Duration) error {
	v, h, ok := c.mutate(func(v Value) Value {
		p := util.Clamp(position, 0, v.Duration)
		return v.Apply(Update{
			Position:    mo.Some(p),
			Caption:     mo.Some(c.track.At(p, v.CaptionOffset)),
			IsCompleted: mo.Some(p == v.Duration),
		})
	})
	if !ok {
		return nil
	}

	return c.platform("seek", c.svc.SeekTo(ctx, h, v.Position))
}

// SetVolume sets the volume, clamped into [0, 1].
func (c *Controller) SetVolume(ctx context.Context, volume float64) error {
	v, h, ok := c.mutate(func(v Value) Value {
		return v.Apply(Update{Volume: mo.Some(util.Clamp(volume, 0, 1))})
	})
	if !ok {
		return nil
	}

	return c.platform("volume", c.svc.SetVolume(ctx, h, v.Volume))
}

// SetPlaybackSpeed sets the speed. Non-positive speeds fail with ErrInvalidSpeed.
// The speed only reaches the platform while playing; Play pushes it otherwise.
func (c *Controller) SetPlaybackSpeed(ctx context.Context, speed float64) error {
	if c.isDisposed() {
		return nil
	}
	if speed <= 0 {
		return ErrInvalidSpeed
	}

	v, h, ok := c.mutate(func(v Value) Value {
		return v.Apply(Update{PlaybackSpeed: mo.Some(speed)})
	})
	if !ok || !v.IsPlaying {
		return nil
	}

	return c.platform("speed", c.svc.SetPlaybackSpeed(ctx, h, speed))
}

// SetCaptionOffset shifts captions relative to the media and recomputes the current caption.
func (c *Controller) SetCaptionOffset(_ context.Context, offset time.Duration) error {
	c.mutate(func(v Value) Value {
		return v.Apply(Update{
			CaptionOffset: mo.Some(offset),
			Caption:       mo.Some(c.track.At(v.Position, offset)),
		})
	})
	return nil
}

// SetClosedCaptionFile loads a new caption track and makes it active.
// A nil loader removes the current track.
func (c *Controller) SetClosedCaptionFile(ctx context.Context, loader caption.Loader) error {
	if c.State() != Ready {
		return nil
	}

	var track *caption.Track
	if loader != nil {
		var err error
		if track, err = loader(ctx); err != nil {
			return err
		}
	}

	c.mutate(func(v Value) Value {
		c.track = track
		return v.Apply(Update{Caption: mo.Some(track.At(v.Position, v.CaptionOffset))})
	})
	return nil
}

// RemoveCurrentFileFromCache evicts the cached copy of a network source, if any.
func (c *Controller) RemoveCurrentFileFromCache() error {
	if c.src.Kind != source.KindNetwork || c.opts.cache == nil {
		return nil
	}
	return c.opts.cache.Remove(c.src.URI)
}

// poll folds the platform position into the snapshot. Ticks whose result arrives
// after the poller was stopped are discarded.
func (c *Controller) poll(stop <-chan struct{}) {
	c.mu.Lock()
	h := c.handle
	c.mu.Unlock()

	position, err := c.svc.Position(c.ctx, h)
	if err != nil {
		return
	}

	c.mu.Lock()
	if c.state != Ready || stopped(stop) {
		c.mu.Unlock()
		return
	}
	c.value = c.value.Apply(Update{
		Position:    mo.Some(position),
		Caption:     mo.Some(c.track.At(position, c.value.CaptionOffset)),
		IsCompleted: mo.Some(position == c.value.Duration),
	})
	v := c.value
	c.mu.Unlock()

	c.notify(v)
}
