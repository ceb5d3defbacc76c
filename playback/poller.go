package playback

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// poller runs tick periodically until stopped. Starting it again replaces the running loop,
// so at most one loop is ever active. Callers serialize start and stop.
type poller struct {
	clock    clockwork.Clock
	interval time.Duration
	wg       *sync.WaitGroup

	stopCh chan struct{}
}

// start stops any running loop and begins a new one.
// The ticker is armed before start returns.
func (p *poller) start(tick func(stop <-chan struct{})) {
	p.stop()

	stop := make(chan struct{})
	p.stopCh = stop

	ticker := p.clock.NewTicker(p.interval)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				tick(stop)
			}
		}
	}()
}

// stop signals the running loop to exit. It does not wait for it.
func (p *poller) stop() {
	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
}

func (p *poller) running() bool {
	return p.stopCh != nil
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
