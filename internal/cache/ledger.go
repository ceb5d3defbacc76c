package cache

import (
	"sync"
	"time"

	"github.com/cachedplayer/cachedplayer/filesystem"
	"github.com/metafates/gache"
)

// MetadataLedger records when each artifact was last fetched.
type MetadataLedger interface {
	Read(key string) (time.Time, bool, error)
	Write(key string, fetched time.Time) error
	Remove(key string) error
	Clear() error
}

// Ledger is a MetadataLedger persisted as a single JSON document through gache.
// The document itself never expires; freshness is decided per entry by the Validator.
type Ledger struct {
	mu       sync.Mutex
	internal *gache.Cache[map[string]time.Time]
}

// NewLedger opens (lazily) the ledger document at path.
func NewLedger(path string) *Ledger {
	return &Ledger{
		internal: gache.New[map[string]time.Time](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

// load must be called with mu held.
func (l *Ledger) load() (map[string]time.Time, error) {
	entries, expired, err := l.internal.Get()
	if err != nil {
		return nil, err
	}
	if expired || entries == nil {
		return make(map[string]time.Time), nil
	}
	return entries, nil
}

func (l *Ledger) Read(key string) (time.Time, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return time.Time{}, false, err
	}

	fetched, ok := entries[key]
	return fetched, ok, nil
}

// Write records fetched for key. Concurrent writers for the same key resolve last-writer-wins.
func (l *Ledger) Write(key string, fetched time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return err
	}

	entries[key] = fetched
	return l.internal.Set(entries)
}

func (l *Ledger) Remove(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return err
	}

	if _, ok := entries[key]; !ok {
		return nil
	}

	delete(entries, key)
	return l.internal.Set(entries)
}

func (l *Ledger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.internal.Set(make(map[string]time.Time))
}

// All returns a copy of every entry.
func (l *Ledger) All() (map[string]time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return nil, err
	}

	out := make(map[string]time.Time, len(entries))
	for k, v := range entries {
		out[k] = v
	}
	return out, nil
}
