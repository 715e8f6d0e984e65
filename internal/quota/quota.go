// Package quota tracks a rolling provider call budget. The place-search
// providers meter by request, so the pipeline checks this budget before
// every outbound call and degrades to partial results when it is spent.
package quota

import (
	"sync"
	"time"
)

// Budget is a rolling-window call counter shared across concurrent requests.
type Budget struct {
	limit  int
	window time.Duration

	mu          sync.Mutex
	windowStart time.Time
	used        int
	denied      int64
}

// NewBudget creates a budget of limit calls per window. A limit <= 0 means
// unlimited.
func NewBudget(limit int, window time.Duration) *Budget {
	if window <= 0 {
		window = time.Hour
	}
	return &Budget{
		limit:       limit,
		window:      window,
		windowStart: time.Now(),
	}
}

// Allow reports whether another call fits in the current window and, if so,
// consumes one unit of budget.
func (b *Budget) Allow() bool {
	if b.limit <= 0 {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.Sub(b.windowStart) >= b.window {
		b.windowStart = now
		b.used = 0
	}

	if b.used >= b.limit {
		b.denied++
		return false
	}

	b.used++
	return true
}

// Stats contains budget counters.
type Stats struct {
	Limit       int
	Used        int
	Denied      int64
	WindowStart time.Time
}

// Stats returns a snapshot of the current window.
func (b *Budget) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Limit:       b.limit,
		Used:        b.used,
		Denied:      b.denied,
		WindowStart: b.windowStart,
	}
}

// Reset restarts the window and clears counters. Intended for tests.
func (b *Budget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windowStart = time.Now()
	b.used = 0
	b.denied = 0
}
