package controller

import (
	"context"
	"sync"

	"github.com/aretw0/agentscene/pkg/domain"
)

// lockEntry holds the semaphore and the reference count.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

// LockSet hands out one lock per key and forgets keys nobody holds or waits on.
// Controllers of the same editor that share a LockSet never run transitions concurrently.
type LockSet struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

// NewLockSet creates an empty lock set.
func NewLockSet() *LockSet {
	return &LockSet{locks: make(map[string]*lockEntry)}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST call release(key) once done with the entry.
func (l *LockSet) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[key]
	if !exists {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (l *LockSet) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, key)
	}
}

// Lock takes the key's lock. With wait set it blocks until the lock frees up or
// ctx ends; otherwise it fails at once with domain.ErrTransitionInFlight.
func (l *LockSet) Lock(ctx context.Context, key string, wait bool) (unlock func(), err error) {
	entry := l.acquire(key)

	if wait {
		select {
		case entry.sem <- struct{}{}:
		case <-ctx.Done():
			l.release(key)
			return nil, ctx.Err()
		}
	} else {
		select {
		case entry.sem <- struct{}{}:
		default:
			l.release(key)
			return nil, domain.ErrTransitionInFlight
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.release(key)
		})
	}, nil
}
