// Package lifecycle reports when the application moves between foreground and background.
package lifecycle

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// State is the application visibility.
type State int

const (
	Foreground State = iota
	Background
)

func (s State) String() string {
	if s == Background {
		return "background"
	}
	return "foreground"
}

// Source delivers lifecycle transitions.
type Source interface {
	// Subscribe registers fn for every transition. The returned func unregisters it.
	Subscribe(fn func(State)) (cancel func())
}

// Notifier is a Source driven by explicit Notify calls.
// Repeated notifications of the current state are dropped.
type Notifier struct {
	mu    sync.Mutex
	state State
	next  int
	subs  map[int]func(State)
}

// NewNotifier returns a notifier starting in the foreground.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func(State))}
}

func (n *Notifier) Subscribe(fn func(State)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	n.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

// Notify records s and fans it out to subscribers if it differs from the current state.
// Subscribers run on the caller's goroutine, outside the lock.
func (n *Notifier) Notify(s State) {
	n.mu.Lock()
	if s == n.state {
		n.mu.Unlock()
		return
	}
	n.state = s

	ids := lo.Keys(n.subs)
	sort.Ints(ids)
	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, n.subs[id])
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// State returns the last notified state.
func (n *Notifier) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}
