package jobs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Jobs do not survive a restart; it
// backs tests and degraded operation when redis is unreachable.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]Spec
	keys  map[string]string // uniqueness key -> job ID
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]Spec),
		keys:  make(map[string]string),
	}
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, spec Spec, policy ReplacePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if spec.Key != "" {
		if existing, ok := s.keys[spec.Key]; ok {
			if policy == Keep {
				return nil
			}
			delete(s.items, existing)
		}
		s.keys[spec.Key] = spec.ID
	}
	s.items[spec.ID] = spec
	return nil
}

// Claim implements Store.
func (s *MemoryStore) Claim(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]Spec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]Spec, 0, limit)
	for _, spec := range s.items {
		if !spec.RunAt.After(now) {
			due = append(due, spec)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].RunAt.Before(due[j].RunAt) })
	if len(due) > limit {
		due = due[:limit]
	}

	for _, spec := range due {
		leased := spec
		leased.RunAt = now.Add(lease)
		s.items[spec.ID] = leased
	}
	return due, nil
}

// Reschedule implements Store.
func (s *MemoryStore) Reschedule(ctx context.Context, spec Spec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[spec.ID]; ok {
		s.items[spec.ID] = spec
	}
	return nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, ok := s.items[id]
	if !ok {
		return nil
	}
	delete(s.items, id)
	if spec.Key != "" && s.keys[spec.Key] == id {
		delete(s.keys, spec.Key)
	}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// Len reports pending jobs, for tests.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
