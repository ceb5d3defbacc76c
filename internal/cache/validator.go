package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cachedplayer/cachedplayer/log"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Resolution tells the caller which URL to hand to the player.
type Resolution struct {
	// UseCached is true when a fresh local artifact exists.
	UseCached bool

	// Path is the local artifact path. Empty unless UseCached.
	Path string
}

// Validator decides whether a cached artifact is fresh and schedules
// background population on every miss. It never fails: storage errors
// degrade to a miss so playback falls back to the original source.
type Validator struct {
	store  BlobStore
	ledger MetadataLedger
	clock  clockwork.Clock

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group
	wg     sync.WaitGroup
}

// NewValidator returns a validator using clock for age computations.
func NewValidator(store BlobStore, ledger MetadataLedger, clock clockwork.Clock) *Validator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Validator{
		store:  store,
		ledger: ledger,
		clock:  clock,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Resolve reports whether the artifact for key may be used.
//
// An artifact is fresh when it is present and its ledger entry is at most ttl old.
// Present but stale or unrecorded artifacts are evicted. Every miss starts a detached
// fetch that outlives ctx; concurrent misses for the same key share one download.
func (v *Validator) Resolve(ctx context.Context, key string, headers map[string]string, ttl time.Duration) Resolution {
	logger := log.With(log.Fields{"key": key})

	path, present, err := v.store.PresentPath(key)
	if err != nil {
		logger.Warnf("blob lookup failed: %s", err)
		v.populate(ctx, key, headers)
		return Resolution{}
	}

	if !present {
		logger.Debug("cache miss")
		v.populate(ctx, key, headers)
		return Resolution{}
	}

	fetched, recorded, err := v.ledger.Read(key)
	if err != nil {
		logger.Warnf("ledger read failed: %s", err)
		return Resolution{}
	}

	if recorded && v.clock.Since(fetched) <= ttl {
		logger.Debug("cache hit")
		return Resolution{UseCached: true, Path: path}
	}

	logger.Debug("cache stale, evicting")
	if err := v.store.Evict(key); err != nil {
		logger.Warnf("evict failed: %s", err)
	}
	if recorded {
		if err := v.ledger.Remove(key); err != nil {
			logger.Warnf("ledger remove failed: %s", err)
		}
	}

	v.populate(ctx, key, headers)
	return Resolution{}
}

func (v *Validator) populate(ctx context.Context, key string, headers map[string]string) {
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()

		// the download must survive the caller, but not a shutdown
		detached, stop := context.WithCancel(context.WithoutCancel(ctx))
		defer stop()
		unbind := context.AfterFunc(v.ctx, stop)
		defer unbind()

		_, err, _ := v.group.Do(key, func() (any, error) {
			if err := v.store.Fetch(detached, key, headers); err != nil {
				return nil, err
			}
			return nil, v.ledger.Write(key, v.clock.Now())
		})

		if err != nil {
			log.With(log.Fields{"key": key}).Warnf("cache population failed: %s", err)
			return
		}

		log.With(log.Fields{"key": key}).Info("cached")
	}()
}

// Wait blocks until every scheduled population has finished.
func (v *Validator) Wait() {
	v.wg.Wait()
}

// Close cancels in-flight populations and waits for them to return.
func (v *Validator) Close() {
	v.cancel()
	v.wg.Wait()
}
