package ratelimiter

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// MemoryStore keeps a token bucket per key in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time

	cleanupInterval time.Duration
	staleAfter      time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often idle buckets are dropped.
// Zero disables the background sweep.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.cleanupInterval = interval
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		entries:         make(map[string]*entry),
		now:             time.Now,
		cleanupInterval: 5 * time.Minute,
		staleAfter:      time.Hour,
		stop:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ms)
	}
	if ms.cleanupInterval > 0 {
		go ms.cleanup()
	}
	return ms
}

func (ms *MemoryStore) Take(_ context.Context, key string, cfg Config) (*Result, error) {
	now := ms.now()
	burst := cfg.burst()
	every := rate.Every(cfg.Window / time.Duration(cfg.Requests))

	ms.mu.Lock()
	e, ok := ms.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(every, burst)}
		ms.entries[key] = e
	}
	e.lastAccess = now
	ms.mu.Unlock()

	res := &Result{Limit: burst}
	if e.limiter.AllowN(now, 1) {
		res.Remaining = int(math.Floor(e.limiter.TokensAt(now)))
	} else {
		res.Remaining = -1
	}

	missing := 1 - e.limiter.TokensAt(now)
	if missing > 0 {
		res.ResetAt = now.Add(time.Duration(missing / float64(every) * float64(time.Second)))
	} else {
		res.ResetAt = now
	}
	return res, nil
}

func (ms *MemoryStore) cleanup() {
	ticker := time.NewTicker(ms.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.removeStale()
		case <-ms.stop:
			return
		}
	}
}

func (ms *MemoryStore) removeStale() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cutoff := ms.now().Add(-ms.staleAfter)
	for key, e := range ms.entries {
		if e.lastAccess.Before(cutoff) {
			delete(ms.entries, key)
		}
	}
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (ms *MemoryStore) Close() {
	ms.stopOnce.Do(func() { close(ms.stop) })
}
