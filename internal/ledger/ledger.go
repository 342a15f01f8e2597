// Package ledger records the call identifiers already committed to the sink.
// The full set is loaded into memory at startup; Mark only touches memory and
// Persist writes the durable store once per pass. A ledger assumes a single
// writer per backing store.
package ledger

import (
	"context"
	"sort"
	"sync"
)

// Ledger is the dedup record of committed calls.
type Ledger interface {
	// Load replaces the in-memory set with the durable contents.
	Load(ctx context.Context) error
	Contains(id string) bool
	// Mark adds id to the in-memory set.
	Mark(id string)
	// Persist writes the in-memory set to durable storage.
	Persist(ctx context.Context) error
	Len() int
	// IDs returns the in-memory set in sorted order.
	IDs() []string
	Close() error
}

// set is the in-memory state shared by every backend. pending holds ids
// marked since the last successful persist.
type set struct {
	mu      sync.RWMutex
	ids     map[string]struct{}
	pending map[string]struct{}
}

func newSet() set {
	return set{
		ids:     make(map[string]struct{}),
		pending: make(map[string]struct{}),
	}
}

func (s *set) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

func (s *set) Mark(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return
	}
	s.ids[id] = struct{}{}
	s.pending[id] = struct{}{}
}

func (s *set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *set) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.ids)
}

func (s *set) replace(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	s.pending = make(map[string]struct{})
}

func (s *set) pendingIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.pending)
}

// flushed drops ids from pending once they are durable.
func (s *set) flushed(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.pending, id)
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
