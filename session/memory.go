package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-memory Store. Sessions are lost on
// restart. Each session carries its own mutex, so operations on
// unrelated sessions never contend beyond the brief map lookup.
type MemoryStore struct {
	mu      sync.RWMutex // guards the map shape only
	entries map[string]*entry
	idleTTL time.Duration
	now     func() time.Time
}

type entry struct {
	mu   sync.Mutex
	data Data
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory session store. idleTTL bounds how
// long an untouched session survives a Sweep; 0 disables expiry.
func NewMemoryStore(idleTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entry),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, data Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[data.SessionID]; ok {
		return ErrExists
	}
	s.entries[data.SessionID] = &entry{data: data}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Data, error) {
	e, ok := s.lookup(id)
	if !ok {
		return Data{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data, nil
}

func (s *MemoryStore) UpdateIfStatus(_ context.Context, id string, expect Status, mutate func(*Data)) (Data, error) {
	e, ok := s.lookup(id)
	if !ok {
		return Data{}, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.data.Status != expect {
		return Data{}, ErrInvalidState
	}
	mutate(&e.data)
	e.data.LastAccessedAt = s.now().UTC()
	return e.data, nil
}

func (s *MemoryStore) Touch(ctx context.Context, id string, expect Status) (Data, error) {
	return s.UpdateIfStatus(ctx, id, expect, func(*Data) {})
}

// Sweep removes sessions whose last access is older than the idle TTL.
// Call periodically from a background goroutine.
func (s *MemoryStore) Sweep() {
	if s.idleTTL <= 0 {
		return
	}
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		e.mu.Lock()
		stale := e.data.LastAccessedAt.Before(cutoff)
		e.mu.Unlock()
		if stale {
			delete(s.entries, id)
		}
	}
}

func (s *MemoryStore) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}
