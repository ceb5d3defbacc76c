package cache

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
)

// Entry describes one recorded artifact.
type Entry struct {
	Key     string
	Fetched time.Time
	Path    string
	Present bool
}

// Manager ties a FileStore, a Ledger and a Validator together behind source URLs.
type Manager struct {
	store     *FileStore
	ledger    *Ledger
	validator *Validator
	clock     clockwork.Clock
	ttl       time.Duration
}

// NewManager returns a manager storing artifacts in dir and fetch times in the
// ledger document at ledgerPath. Artifacts older than ttl are considered stale.
func NewManager(dir, ledgerPath string, ttl time.Duration, client *http.Client, clock clockwork.Clock) *Manager {
	store := NewFileStore(dir, client)
	ledger := NewLedger(ledgerPath)

	return &Manager{
		store:     store,
		ledger:    ledger,
		validator: NewValidator(store, ledger, clock),
		clock:     clock,
		ttl:       ttl,
	}
}

// Resolve normalizes rawURL and consults the validator.
// URLs that cannot be normalized are never cached.
func (m *Manager) Resolve(ctx context.Context, rawURL string, headers map[string]string) Resolution {
	key, err := Key(rawURL)
	if err != nil {
		return Resolution{}
	}

	return m.validator.Resolve(ctx, key, headers, m.ttl)
}

// Remove evicts the artifact for rawURL and forgets its fetch time.
func (m *Manager) Remove(rawURL string) error {
	key, err := Key(rawURL)
	if err != nil {
		return err
	}

	return errors.Join(m.store.Evict(key), m.ledger.Remove(key))
}

// Clear empties both stores.
func (m *Manager) Clear() error {
	return errors.Join(m.store.Clear(), m.ledger.Clear())
}

// Entries lists recorded artifacts, most recently fetched first.
func (m *Manager) Entries() ([]Entry, error) {
	all, err := m.ledger.All()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(all))
	for k, fetched := range all {
		path, present, _ := m.store.PresentPath(k)
		entries = append(entries, Entry{
			Key:     k,
			Fetched: fetched,
			Path:    path,
			Present: present,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Fetched.After(entries[j].Fetched)
	})

	return entries, nil
}

// Fresh reports whether e would be served from cache right now.
func (m *Manager) Fresh(e Entry) bool {
	return e.Present && m.clock.Since(e.Fetched) <= m.ttl
}

// Wait blocks until background populations finish.
func (m *Manager) Wait() {
	m.validator.Wait()
}

// Close cancels background populations.
func (m *Manager) Close() {
	m.validator.Close()
}
