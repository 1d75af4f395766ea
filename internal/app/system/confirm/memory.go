package confirm

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. Suitable for a single instance.
type MemoryStore struct {
	mu      sync.Mutex
	pending map[string]memEntry
	now     func() time.Time
}

type memEntry struct {
	action  Action
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: make(map[string]memEntry), now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, a Action, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[a.ActorID] = memEntry{action: a, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Peek(_ context.Context, actorID string) (Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(actorID)
	if !ok {
		return Action{}, ErrNoPending
	}
	return e.action, nil
}

func (s *MemoryStore) Take(_ context.Context, actorID, token string) (Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(actorID)
	if !ok {
		return Action{}, ErrNoPending
	}
	if e.action.Token != token {
		return Action{}, ErrTokenMismatch
	}
	delete(s.pending, actorID)
	return e.action, nil
}

func (s *MemoryStore) Cancel(_ context.Context, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, actorID)
	return nil
}

// live returns the unexpired entry for actorID, dropping an expired one.
// Caller holds s.mu.
func (s *MemoryStore) live(actorID string) (memEntry, bool) {
	e, ok := s.pending[actorID]
	if !ok {
		return memEntry{}, false
	}
	if !s.now().Before(e.expires) {
		delete(s.pending, actorID)
		return memEntry{}, false
	}
	return e, true
}
