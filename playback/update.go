package playback

import (
	"slices"
	"time"

	"github.com/cachedplayer/cachedplayer/caption"
	"github.com/cachedplayer/cachedplayer/player"
	"github.com/samber/mo"
)

type nullableState uint8

const (
	nullKeep nullableState = iota
	nullSet
	nullClear
)

// Nullable is a partial update of an optional field: keep it, set it or clear it.
// The zero value keeps the current value.
type Nullable[T any] struct {
	state nullableState
	value T
}

// Set returns an update that stores v.
func Set[T any](v T) Nullable[T] {
	return Nullable[T]{state: nullSet, value: v}
}

// Clear returns an update that removes the current value.
func Clear[T any]() Nullable[T] {
	return Nullable[T]{state: nullClear}
}

func (n Nullable[T]) apply(current mo.Option[T]) mo.Option[T] {
	switch n.state {
	case nullSet:
		return mo.Some(n.value)
	case nullClear:
		return mo.None[T]()
	default:
		return current
	}
}

// Update is a partial change to a Value. Absent fields are left as they are.
type Update struct {
	Duration      mo.Option[time.Duration]
	Position      mo.Option[time.Duration]
	Caption       mo.Option[caption.Caption]
	CaptionOffset mo.Option[time.Duration]
	Buffered      mo.Option[[]player.Range]

	IsInitialized mo.Option[bool]
	IsPlaying     mo.Option[bool]
	IsLooping     mo.Option[bool]
	IsBuffering   mo.Option[bool]
	IsCompleted   mo.Option[bool]

	Volume        mo.Option[float64]
	PlaybackSpeed mo.Option[float64]

	RotationCorrection mo.Option[int]
	Size               mo.Option[player.Size]

	Error Nullable[string]
}

// Apply returns a copy of v with u applied.
func (v Value) Apply(u Update) Value {
	patch(&v.Duration, u.Duration)
	patch(&v.Position, u.Position)
	patch(&v.Caption, u.Caption)
	patch(&v.CaptionOffset, u.CaptionOffset)
	if buffered, ok := u.Buffered.Get(); ok {
		v.Buffered = slices.Clone(buffered)
	}

	patch(&v.IsInitialized, u.IsInitialized)
	patch(&v.IsPlaying, u.IsPlaying)
	patch(&v.IsLooping, u.IsLooping)
	patch(&v.IsBuffering, u.IsBuffering)
	patch(&v.IsCompleted, u.IsCompleted)

	patch(&v.Volume, u.Volume)
	patch(&v.PlaybackSpeed, u.PlaybackSpeed)

	patch(&v.RotationCorrection, u.RotationCorrection)
	patch(&v.Size, u.Size)

	v.Error = u.Error.apply(v.Error)
	return v
}

func patch[T any](field *T, o mo.Option[T]) {
	if x, ok := o.Get(); ok {
		*field = x
	}
}
