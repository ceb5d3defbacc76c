package playback

import (
	"context"
	"errors"

	"github.com/cachedplayer/cachedplayer/player"
)

// Dispose tears the session down exactly once. If session creation is in flight it waits
// for it first. Concurrent callers block until the platform session is released.
//
// If ctx ends while waiting for creation, Dispose returns ctx.Err() and the teardown
// completes in the background once creation finishes.
//
// Dispose does not wait for the event and poll goroutines, so it may be called from a
// listener. Done is closed once they have exited.
func (c *Controller) Dispose(ctx context.Context) error {
	c.disposeOnce.Do(func() {
		c.disposeErr = c.dispose(ctx)
	})
	return c.disposeErr
}

func (c *Controller) dispose(ctx context.Context) error {
	c.mu.Lock()
	started := c.state != Uninitialized
	c.state = Disposed
	c.poller.stop()
	close(c.disposed)
	c.mu.Unlock()

	c.logger.Debug("disposing")

	if !started {
		c.markCreated()
	}

	select {
	case <-c.created:
		return c.release()
	case <-ctx.Done():
		go func() {
			<-c.created
			_ = c.release()
		}()
		return ctx.Err()
	}
}

// release frees everything in order: event stream, platform session, lifecycle observer.
func (c *Controller) release() error {
	c.mu.Lock()
	stopEvents, h, hasHandle := c.stopEvents, c.handle, c.hasHandle
	c.mu.Unlock()

	if stopEvents != nil {
		stopEvents()
	}

	var err error
	if hasHandle {
		if err = c.svc.Dispose(context.Background(), h); err != nil {
			err = &PlatformError{Op: "dispose", Err: err}
		}
	}

	if c.unsubscribe != nil {
		c.unsubscribe()
	}

	c.cancel()
	go func() {
		c.wg.Wait()
		close(c.done)
	}()

	if err != nil && !errors.Is(err, player.ErrUnknownHandle) {
		c.logger.Warn(err)
		return err
	}
	return nil
}
