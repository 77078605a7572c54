package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avelichko/ridepool/internal/apperrors"
)

// Arena hands out one exclusive lock per key. Operations on the same
// ride serialize through its lock; distinct rides never share one.
// Entries are reference-counted and dropped once nobody holds or
// waits on them, so the map does not grow with ride history.
type Arena struct {
	mu      sync.Mutex
	entries map[string]*entry
	wait    time.Duration
}

type entry struct {
	ch   chan struct{}
	refs int
}

// New creates an arena. wait bounds how long Acquire blocks before
// giving up with ErrBusy; wait <= 0 means the context is the only
// bound.
func New(wait time.Duration) *Arena {
	return &Arena{
		entries: make(map[string]*entry),
		wait:    wait,
	}
}

// Acquire blocks until the key's lock is held, the wait deadline
// passes (ErrBusy), or ctx is done. The returned release function is
// safe to call more than once.
func (a *Arena) Acquire(ctx context.Context, key string) (func(), error) {
	a.mu.Lock()
	e := a.entries[key]
	if e == nil {
		e = &entry{ch: make(chan struct{}, 1)}
		a.entries[key] = e
	}
	e.refs++
	a.mu.Unlock()

	var timeout <-chan time.Time
	if a.wait > 0 {
		timer := time.NewTimer(a.wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case e.ch <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() {
				<-e.ch
				a.put(key, e)
			})
		}
		return release, nil
	case <-timeout:
		a.put(key, e)
		return nil, fmt.Errorf("lock %s: %w", key, apperrors.ErrBusy)
	case <-ctx.Done():
		a.put(key, e)
		return nil, fmt.Errorf("lock %s: %w", key, ctx.Err())
	}
}

func (a *Arena) put(key string, e *entry) {
	a.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(a.entries, key)
	}
	a.mu.Unlock()
}
