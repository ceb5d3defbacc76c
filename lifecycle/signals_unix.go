//go:build !windows

package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cachedplayer/cachedplayer/log"
)

// Signals returns a notifier driven by process signals until ctx is done:
// SIGUSR1 moves to the background, SIGUSR2 back to the foreground.
// Headless sessions use it in place of terminal focus reports.
func Signals(ctx context.Context) *Notifier {
	n := NewNotifier()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)

	go func() {
		defer signal.Stop(sigChan)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigChan:
				state := Foreground
				if sig == syscall.SIGUSR1 {
					state = Background
				}
				log.Debugf("lifecycle signal %s: %s", sig, state)
				n.Notify(state)
			}
		}
	}()

	return n
}
