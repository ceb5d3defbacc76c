//go:build windows

package lifecycle

import "context"

// Signals returns a notifier that stays in the foreground: Windows has no user signals.
func Signals(_ context.Context) *Notifier {
	return NewNotifier()
}
