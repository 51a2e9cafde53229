package access

import (
	"context"
	"fmt"
	"sync"

	id "bagofholding/pkg/domain"
	"bagofholding/pkg/platform/sentinel"
)

type grantKey struct {
	bagID  id.BagID
	userID id.UserID
}

// InMemoryStore stores grants in memory for tests/dev.
type InMemoryStore struct {
	mu     sync.RWMutex
	grants map[grantKey]*Grant
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{grants: make(map[grantKey]*Grant)}
}

func (s *InMemoryStore) Create(_ context.Context, grant *Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := grantKey{bagID: grant.BagID, userID: grant.UserID}
	if _, ok := s.grants[key]; ok {
		return fmt.Errorf("grant already exists: %w", sentinel.ErrConflict)
	}
	copied := *grant
	s.grants[key] = &copied
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, bagID id.BagID, userID id.UserID) (*Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if grant, ok := s.grants[grantKey{bagID: bagID, userID: userID}]; ok {
		copied := *grant
		return &copied, nil
	}
	return nil, fmt.Errorf("grant not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) ListByBag(_ context.Context, bagID id.BagID) ([]*Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Grant
	for key, grant := range s.grants {
		if key.bagID == bagID {
			copied := *grant
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]*Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Grant
	for key, grant := range s.grants {
		if key.userID == userID {
			copied := *grant
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, bagID id.BagID, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := grantKey{bagID: bagID, userID: userID}
	if _, ok := s.grants[key]; !ok {
		return fmt.Errorf("grant not found: %w", sentinel.ErrNotFound)
	}
	delete(s.grants, key)
	return nil
}
