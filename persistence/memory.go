package persistence

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jorgeai/leadflow/types"
)

// MemoryStore is the in-process backend. It deep-copies on both Get and Put
// so callers never share slices with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	contacts map[string][]byte
	closed   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contacts: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, contactID string) (*types.Contact, error) {
	if contactID == "" {
		return nil, ErrInvalidInput
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	raw, ok := s.contacts[contactID]
	if !ok {
		return nil, ErrNotFound
	}
	var c types.Contact
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MemoryStore) Put(ctx context.Context, contact *types.Contact) error {
	if contact == nil || contact.ID == "" {
		return ErrInvalidInput
	}
	raw, err := json.Marshal(contact)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.contacts[contact.ID] = raw
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, contactID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	delete(s.contacts, contactID)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	return int64(len(s.contacts)), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
