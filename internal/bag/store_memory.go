package bag

import (
	"context"
	"fmt"
	"sync"

	id "bagofholding/pkg/domain"
	"bagofholding/pkg/platform/sentinel"
)

// InMemoryStore stores bags in memory for tests/dev.
type InMemoryStore struct {
	mu   sync.RWMutex
	bags map[id.BagID]*Bag
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{bags: make(map[id.BagID]*Bag)}
}

func (s *InMemoryStore) Create(_ context.Context, bag *Bag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bags[bag.ID]; ok {
		return fmt.Errorf("bag already exists: %w", sentinel.ErrConflict)
	}
	copied := *bag
	s.bags[bag.ID] = &copied
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, bagID id.BagID) (*Bag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if bag, ok := s.bags[bagID]; ok {
		copied := *bag
		return &copied, nil
	}
	return nil, fmt.Errorf("bag not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindMany(_ context.Context, bagIDs []id.BagID) ([]*Bag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Bag
	for _, bagID := range bagIDs {
		if bag, ok := s.bags[bagID]; ok {
			copied := *bag
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, bagID id.BagID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bags[bagID]; !ok {
		return fmt.Errorf("bag not found: %w", sentinel.ErrNotFound)
	}
	delete(s.bags, bagID)
	return nil
}
