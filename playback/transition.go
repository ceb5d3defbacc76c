package playback

import (
	"github.com/cachedplayer/cachedplayer/caption"
	"github.com/cachedplayer/cachedplayer/player"
	"github.com/samber/mo"
)

// transition folds one platform event into the snapshot. It has no side effects;
// the controller performs the platform calls an event requires separately.
func transition(v Value, ev player.Event, track *caption.Track) Value {
	if ev.Err != nil {
		return v.Apply(Update{
			IsInitialized: mo.Some(false),
			Error:         Set((&PlatformError{Op: "events", Err: ev.Err}).Error()),
		})
	}

	switch ev.Type {
	case player.Ready:
		return v.Apply(Update{
			Duration:           mo.Some(ev.Duration),
			Size:               mo.Some(ev.Size),
			RotationCorrection: mo.Some(ev.RotationCorrection),
			IsInitialized:      mo.Some(true),
			IsCompleted:        mo.Some(false),
			Error:              Clear[string](),
		})
	case player.Completed:
		// the platform restarts looping media itself
		if v.IsLooping {
			return v
		}
		return v.Apply(Update{
			Position:    mo.Some(v.Duration),
			Caption:     mo.Some(track.At(v.Duration, v.CaptionOffset)),
			IsPlaying:   mo.Some(false),
			IsCompleted: mo.Some(true),
		})
	case player.BufferingUpdate:
		return v.Apply(Update{Buffered: mo.Some(ev.Buffered)})
	case player.BufferingStart:
		return v.Apply(Update{IsBuffering: mo.Some(true)})
	case player.BufferingEnd:
		return v.Apply(Update{IsBuffering: mo.Some(false)})
	case player.PlayingStateUpdate:
		u := Update{IsPlaying: mo.Some(ev.IsPlaying)}
		if ev.IsPlaying {
			u.IsCompleted = mo.Some(false)
		}
		return v.Apply(u)
	default:
		return v
	}
}
