package resilience

import (
	"sync"
)

// AttemptTracker counts unsuccessful processing attempts per call id so a
// call that keeps failing can be dropped after a cap. Counts live in memory
// for the lifetime of the process.
type AttemptTracker struct {
	max    int
	mu     sync.Mutex
	counts map[string]int
}

// NewAttemptTracker creates a tracker. A max of zero or less disables the cap.
func NewAttemptTracker(max int) *AttemptTracker {
	return &AttemptTracker{
		max:    max,
		counts: make(map[string]int),
	}
}

// Exhausted reports whether id has reached the attempt cap.
func (t *AttemptTracker) Exhausted(id string) bool {
	if t == nil || t.max <= 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[id] >= t.max
}

// Fail records an unsuccessful attempt and returns the new count.
func (t *AttemptTracker) Fail(id string) int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[id]++
	return t.counts[id]
}

// Clear forgets id, typically after it was committed.
func (t *AttemptTracker) Clear(id string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.counts, id)
}

// Count returns the recorded attempts for id.
func (t *AttemptTracker) Count(id string) int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[id]
}
