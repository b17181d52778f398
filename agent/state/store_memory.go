package state

import (
	"context"
	"sync"
)

// MemoryStore keeps histories for the lifetime of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]History
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]History)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (History, error) {
	if _, err := sessionKey("", userID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.sessions[userID]
	if !ok {
		return nil, ErrStateNotFound
	}
	return h.Clone(), nil
}

func (s *MemoryStore) Set(_ context.Context, userID string, h History) error {
	if _, err := sessionKey("", userID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[userID] = h.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	return nil
}
