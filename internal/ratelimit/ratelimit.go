// Package ratelimit implements sliding-window admission control.
//
// Two instances guard the check flow: a per-caller limiter keyed by client
// IP, and a single-key limiter protecting the shared twitter241 API budget.
// State is process-local and advisory; losing it on restart is safe.
package ratelimit

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// SlidingWindow admits at most limit requests per key within any window-sized
// interval. The read-prune-append sequence is a single critical section per
// call, so concurrent callers for the same key never over-admit.
type SlidingWindow struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	hits   map[string][]time.Time
	clock  clockwork.Clock
}

// New creates a limiter with the given window width and capacity.
func New(window time.Duration, limit int, clock clockwork.Clock) *SlidingWindow {
	return &SlidingWindow{
		window: window,
		limit:  limit,
		hits:   make(map[string][]time.Time),
		clock:  clock,
	}
}

// Allow reports whether the caller may proceed. An admitted call is recorded
// as consumed capacity; a rejected call records nothing.
func (l *SlidingWindow) Allow(key string) bool {
	now := l.clock.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamps := prune(l.hits[key], cutoff)
	if len(timestamps) >= l.limit {
		l.hits[key] = timestamps
		return false
	}

	l.hits[key] = append(timestamps, now)
	return true
}

// Remaining returns how many admissions key has left in the current window.
func (l *SlidingWindow) Remaining(key string) int {
	cutoff := l.clock.Now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	used := len(prune(l.hits[key], cutoff))
	if used >= l.limit {
		return 0
	}
	return l.limit - used
}

// Sweep removes keys whose window has drained, bounding memory. Returns the
// number of keys removed.
func (l *SlidingWindow) Sweep() int {
	cutoff := l.clock.Now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, timestamps := range l.hits {
		live := prune(timestamps, cutoff)
		if len(live) == 0 {
			delete(l.hits, key)
			removed++
			continue
		}
		l.hits[key] = live
	}
	return removed
}

// Keys returns the number of tracked keys, swept or not.
func (l *SlidingWindow) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

// StartSweepTimer runs Sweep on the given interval until the returned stop
// function is called.
func (l *SlidingWindow) StartSweepTimer(interval time.Duration) func() {
	ticker := l.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				l.Sweep()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}

// prune drops timestamps at or before cutoff. Timestamps are appended in
// order, so the slice stays sorted and only the head needs trimming.
func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(timestamps) && !timestamps[i].After(cutoff) {
		i++
	}
	return timestamps[i:]
}
