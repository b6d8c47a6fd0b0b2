package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	ownerID   string
	expiresAt time.Time
}

// MemoryStore is an in-process [Store] adapter for tests and examples.
// Expiry is enforced passively on read; there is no background sweeper.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	owners  map[string]map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		owners:  make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) Set(_ context.Context, ownerID, sessionRef string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob := make([]byte, len(data))
	copy(blob, data)

	s.entries[sessionRef] = &memoryEntry{
		data:      blob,
		ownerID:   ownerID,
		expiresAt: time.Now().Add(ttl),
	}

	refs, ok := s.owners[ownerID]
	if !ok {
		refs = make(map[string]struct{})
		s.owners[ownerID] = refs
	}
	refs[sessionRef] = struct{}{}

	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionRef string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.liveLocked(sessionRef)
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionRef)
	return nil
}

// Touch ignores ownerID: the in-memory owner index carries no expiry of
// its own, entries leave it only through Delete-time or list-time pruning.
func (s *MemoryStore) Touch(_ context.Context, _ string, sessionRef string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.liveLocked(sessionRef)
	if !ok {
		return ErrNotFound
	}

	e.expiresAt = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) FindAllByOwner(_ context.Context, ownerID string) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := s.owners[ownerID]
	if len(refs) == 0 {
		return nil, nil
	}

	var out [][]byte
	for ref := range refs {
		e, ok := s.liveLocked(ref)
		if !ok {
			delete(refs, ref)
			continue
		}

		blob := make([]byte, len(e.data))
		copy(blob, e.data)
		out = append(out, blob)
	}

	return out, nil
}

func (s *MemoryStore) DeleteAllByOwner(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ref := range s.owners[ownerID] {
		delete(s.entries, ref)
	}
	delete(s.owners, ownerID)

	return nil
}

// liveLocked returns the entry if present and unexpired, reaping it
// otherwise. Caller must hold s.mu.
func (s *MemoryStore) liveLocked(sessionRef string) (*memoryEntry, bool) {
	e, ok := s.entries[sessionRef]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.After(time.Now()) {
		delete(s.entries, sessionRef)
		return nil, false
	}
	return e, true
}
