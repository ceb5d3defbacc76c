package playback

import (
	"slices"

	"github.com/samber/lo"
)

// ListenerID identifies a registered listener.
type ListenerID uint64

type listener struct {
	id ListenerID
	fn func(Value)
}

// AddListener registers fn to receive every new snapshot.
// Listeners run on the goroutine that caused the change, never under the controller's lock,
// and may add or remove listeners themselves.
func (c *Controller) AddListener(fn func(Value)) ListenerID {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	c.nextListener++
	id := c.nextListener
	c.listeners = append(slices.Clone(c.listeners), listener{id: id, fn: fn})
	return id
}

// RemoveListener unregisters a listener. Unknown ids are ignored.
func (c *Controller) RemoveListener(id ListenerID) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	c.listeners = lo.Reject(c.listeners, func(l listener, _ int) bool {
		return l.id == id
	})
}

// notify delivers v to the listeners registered at call time.
// The slice is never mutated in place, so iterating a stale copy is safe.
func (c *Controller) notify(v Value) {
	c.listenersMu.Lock()
	current := c.listeners
	c.listenersMu.Unlock()

	for _, l := range current {
		l.fn(v)
	}
}
