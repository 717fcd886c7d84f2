package cache

import (
	"context"
	"time"
)

// Ticker drives the cache's countdown once per second. Ticks are strictly
// sequential: a tick whose writes outlast the second delays the next one
// rather than overlapping it.
type Ticker struct {
	cache    *DataCache
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewTicker creates a one-second ticker over the given cache. It does not
// start ticking until Start is called.
func NewTicker(cache *DataCache) *Ticker {
	return &Ticker{
		cache:    cache,
		interval: time.Second,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins ticking in the background until Stop is called or the context
// is cancelled.
func (t *Ticker) Start(ctx context.Context) {
	go func() {
		defer close(t.done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			case <-ticker.C:
				t.cache.Tick(ctx)
			}
		}
	}()
}

// Stop halts the ticker and waits for the in-flight tick, if any, to finish.
func (t *Ticker) Stop() {
	close(t.stop)
	<-t.done
}
