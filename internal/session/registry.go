package session

import (
	"sync"
	"sync/atomic"

	"github.com/sebas/callkeeper/internal/telephony"
)

// Registry is the set of currently tracked call handles.
//
// Mutations copy-on-write under a mutex; readers load an immutable slice
// without locking, so callback goroutines can iterate a snapshot while
// adds and removes land concurrently.
type Registry struct {
	mu    sync.Mutex
	calls atomic.Pointer[[]telephony.Call]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	empty := make([]telephony.Call, 0)
	r.calls.Store(&empty)
	return r
}

// Add tracks a handle, preserving insertion order. Returns false if the
// handle is already tracked.
func (r *Registry) Add(c telephony.Call) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.calls.Load()
	for _, existing := range cur {
		if existing.ID() == c.ID() {
			return false
		}
	}

	next := make([]telephony.Call, len(cur)+1)
	copy(next, cur)
	next[len(cur)] = c
	r.calls.Store(&next)
	return true
}

// Remove stops tracking a handle. Returns false if it was not tracked,
// so teardown side effects run at most once per handle.
func (r *Registry) Remove(c telephony.Call) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.calls.Load()
	for i, existing := range cur {
		if existing.ID() == c.ID() {
			next := make([]telephony.Call, 0, len(cur)-1)
			next = append(next, cur[:i]...)
			next = append(next, cur[i+1:]...)
			r.calls.Store(&next)
			return true
		}
	}
	return false
}

// Snapshot returns the current stable call list. The returned slice is
// never mutated after publication.
func (r *Registry) Snapshot() []telephony.Call {
	return *r.calls.Load()
}

// Len returns the number of tracked handles.
func (r *Registry) Len() int {
	return len(*r.calls.Load())
}
