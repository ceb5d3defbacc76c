package playback

import "github.com/cachedplayer/cachedplayer/lifecycle"

// onLifecycle pauses on the way to the background and resumes on return,
// but only if playback was running when the application left.
func (c *Controller) onLifecycle(s lifecycle.State) {
	switch s {
	case lifecycle.Background:
		c.mu.Lock()
		playing := c.state == Ready && c.value.IsPlaying
		c.wasPlaying = playing
		c.mu.Unlock()

		c.logger.Debugf("backgrounded, was playing: %t", playing)
		c.ignore(c.Pause(c.ctx))
	case lifecycle.Foreground:
		c.mu.Lock()
		resume := c.wasPlaying
		c.wasPlaying = false
		c.mu.Unlock()

		if resume {
			c.logger.Debug("foregrounded, resuming")
			c.ignore(c.Play(c.ctx))
		}
	}
}
