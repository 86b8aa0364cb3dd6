// Package memory is the simple in-process storage backend: a mutex-guarded
// map with a hard item cap. Eviction on capacity is driven by the caller and
// is strictly oldest-first; favorited items are not exempt.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/medlocum/locumpay/engine/internal/domain"
)

// DefaultMaxItems caps the store when no explicit limit is given.
const DefaultMaxItems = 200

// Store is an in-memory Store implementation. Every operation runs under a
// single mutex, so each mutating call is atomic.
type Store struct {
	mu       sync.RWMutex
	items    map[string]*domain.HistoryItem
	maxItems int
}

// New creates a memory store. maxItems <= 0 applies DefaultMaxItems.
func New(maxItems int) *Store {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Store{
		items:    make(map[string]*domain.HistoryItem),
		maxItems: maxItems,
	}
}

// Put inserts or replaces an item. Inserting into a full store returns
// domain.ErrStorageCapacity; replacing an existing id is always admitted.
func (s *Store) Put(_ context.Context, item *domain.HistoryItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; !exists && len(s.items) >= s.maxItems {
		return fmt.Errorf("%w: store holds %d items", domain.ErrStorageCapacity, len(s.items))
	}
	s.items[item.ID] = item.Clone()
	return nil
}

// Get returns a copy of the item with the given id.
func (s *Store) Get(_ context.Context, id string) (*domain.HistoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return item.Clone(), nil
}

// Delete removes the item with the given id.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	delete(s.items, id)
	return nil
}

// List filters, sorts, and pages in process.
func (s *Store) List(_ context.Context, filter domain.HistoryFilter, sortBy domain.HistorySort, page domain.PageRequest) ([]*domain.HistoryItem, int, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	matched := make([]*domain.HistoryItem, 0, len(s.items))
	for _, item := range s.items {
		if filter.Matches(item) {
			matched = append(matched, item.Clone())
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return sortBy.Less(matched[i], matched[j])
	})

	total := len(matched)
	start := page.Offset()
	if start >= total {
		return []*domain.HistoryItem{}, total, nil
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// Count returns how many items the store holds.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

// Clear deletes all items matching the filter.
func (s *Store) Clear(_ context.Context, filter domain.HistoryFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, item := range s.items {
		if filter.Matches(item) {
			delete(s.items, id)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op for the memory backend.
func (s *Store) Close() error {
	return nil
}
