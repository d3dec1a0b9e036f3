package store

import "sync"

// revisions hands out per-document write counters, in the manner of a
// logical clock: every write ticks, and a document observed with a higher
// value moves the counter forward.
type revisions struct {
	mu     sync.Mutex
	counts map[string]uint64
}

func newRevisions() *revisions {
	return &revisions{counts: make(map[string]uint64)}
}

// Tick increments the counter for id and returns the new value.
func (r *revisions) Tick(id string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[id]++
	return r.counts[id]
}

// Observe raises the counter for id to at least rev.
func (r *revisions) Observe(id string, rev uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rev > r.counts[id] {
		r.counts[id] = rev
	}
}
