// Package schedule provides the deferred-execution capability used by the
// state store's batch window.
//
// A Scheduler runs a single callback once at the host's next scheduling
// opportunity. The store never depends on a concrete timing source; tests
// substitute Immediate or Manual schedulers to make flushes deterministic.
package schedule

import (
	"sync"
	"time"
)

// CancelFunc cancels a pending scheduled run. Calling it after the run has
// fired, or calling it more than once, is a no-op.
type CancelFunc func()

// Scheduler schedules a callback to run once at the next scheduling
// opportunity.
type Scheduler interface {
	// Schedule arranges for fn to run once. The returned CancelFunc
	// prevents the run if it has not happened yet.
	Schedule(fn func()) CancelFunc
}

// Frame schedules callbacks on a fixed delay, approximating one host frame.
type Frame struct {
	interval time.Duration
}

// DefaultFrameInterval approximates a 60fps host frame.
const DefaultFrameInterval = 16 * time.Millisecond

// NewFrame creates a frame scheduler with the given interval.
// A non-positive interval falls back to DefaultFrameInterval.
func NewFrame(interval time.Duration) *Frame {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Frame{interval: interval}
}

// Schedule runs fn after one frame interval unless cancelled.
func (f *Frame) Schedule(fn func()) CancelFunc {
	timer := time.AfterFunc(f.interval, fn)
	return func() { timer.Stop() }
}

// Immediate runs scheduled callbacks synchronously inside Schedule.
// Useful for tests that want batched mutations to flush inline.
type Immediate struct{}

// Schedule runs fn before returning. The returned CancelFunc is a no-op.
func (Immediate) Schedule(fn func()) CancelFunc {
	fn()
	return func() {}
}

// Manual holds scheduled callbacks until the test fires them explicitly.
type Manual struct {
	mu      sync.Mutex
	pending []*manualEntry
}

type manualEntry struct {
	fn        func()
	cancelled bool
}

// NewManual creates an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// Schedule queues fn until Fire is called.
func (m *Manual) Schedule(fn func()) CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := &manualEntry{fn: fn}
	m.pending = append(m.pending, entry)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		entry.cancelled = true
	}
}

// Fire runs all queued callbacks that have not been cancelled and clears
// the queue. Callbacks scheduled while firing are queued for the next Fire.
func (m *Manual) Fire() {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, entry := range batch {
		if !entry.cancelled {
			entry.fn()
		}
	}
}

// Pending reports the number of queued, uncancelled callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, entry := range m.pending {
		if !entry.cancelled {
			count++
		}
	}
	return count
}
