// Package caption models closed-caption tracks and resolves the caption shown at a playback position.
package caption

import (
	"time"
)

// Caption is one timed line of text. The zero value is the empty caption.
type Caption struct {
	// Number is the 1-based position of the caption in its track.
	Number int
	Start  time.Duration
	End    time.Duration
	Text   string
}

// IsEmpty reports whether c is the empty caption.
func (c Caption) IsEmpty() bool {
	return c == Caption{}
}

// Track is an ordered collection of captions as they appeared in the source file.
type Track struct {
	Captions []Caption
}

// At returns the first caption in insertion order whose range contains position+offset,
// bounds inclusive. A nil or empty track, or no match, yields the empty caption.
//
// Lookup is a linear scan. A binary search over Start would give the same answer only if
// the track were sorted and free of overlaps, which subtitle files do not guarantee.
func (t *Track) At(position, offset time.Duration) Caption {
	if t == nil {
		return Caption{}
	}

	delayed := position + offset
	for _, c := range t.Captions {
		if c.Start <= delayed && delayed <= c.End {
			return c
		}
	}

	return Caption{}
}

// Len returns the number of captions in the track.
func (t *Track) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Captions)
}
