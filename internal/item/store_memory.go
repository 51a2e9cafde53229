package item

import (
	"context"
	"fmt"
	"sort"
	"sync"

	id "bagofholding/pkg/domain"
	"bagofholding/pkg/platform/sentinel"
)

// InMemoryStore stores items and history in memory for tests/dev.
type InMemoryStore struct {
	mu      sync.RWMutex
	items   map[id.ItemID]*Item
	history map[id.ItemID][]History
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		items:   make(map[id.ItemID]*Item),
		history: make(map[id.ItemID][]History),
	}
}

func (s *InMemoryStore) Create(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; ok {
		return fmt.Errorf("item already exists: %w", sentinel.ErrConflict)
	}
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, itemID id.ItemID) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if item, ok := s.items[itemID]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, fmt.Errorf("item not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) Update(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return fmt.Errorf("item not found: %w", sentinel.ErrNotFound)
	}
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, itemID id.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[itemID]; !ok {
		return fmt.Errorf("item not found: %w", sentinel.ErrNotFound)
	}
	delete(s.items, itemID)
	return nil
}

func (s *InMemoryStore) ListByBag(_ context.Context, bagID id.BagID) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Item
	for _, item := range s.items {
		if item.BagID == bagID {
			copied := *item
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) AppendHistory(_ context.Context, record History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[record.ItemID] = append(s.history[record.ItemID], record)
	return nil
}

func (s *InMemoryStore) HistoryForItem(_ context.Context, itemID id.ItemID) ([]History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.history[itemID]
	out := make([]History, len(records))
	copy(out, records)
	// Newest first, matching the read path's interest in recent changes.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}
