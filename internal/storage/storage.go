// Package storage defines the persistence contract for calculation history.
// Two interchangeable backends implement it: an in-process capped map
// (memory) and an indexed structured store (sqlite), selected at
// construction time.
package storage

import (
	"context"

	"github.com/medlocum/locumpay/engine/internal/domain"
)

// Store persists calculation history records. Ids are unique per backend.
// Mutating operations are atomic: a failed call leaves the store unchanged.
// Put on a full backend with a new id returns domain.ErrStorageCapacity;
// replacing an existing id is always admitted.
type Store interface {
	Put(ctx context.Context, item *domain.HistoryItem) error
	Get(ctx context.Context, id string) (*domain.HistoryItem, error)
	Delete(ctx context.Context, id string) error

	// List returns one page of matching items plus the total match count.
	List(ctx context.Context, filter domain.HistoryFilter, sort domain.HistorySort, page domain.PageRequest) ([]*domain.HistoryItem, int, error)

	Count(ctx context.Context) (int, error)

	// Clear deletes all items matching the filter and reports how many.
	Clear(ctx context.Context, filter domain.HistoryFilter) (int, error)

	Close() error
}
