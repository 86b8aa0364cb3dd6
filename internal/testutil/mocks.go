// Package testutil holds hand-written fakes and fixtures shared by tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/medlocum/locumpay/engine/internal/domain"
	"github.com/medlocum/locumpay/engine/internal/storage"
	"github.com/medlocum/locumpay/engine/internal/storage/memory"
)

// MockStore wraps the in-memory backend with overridable operations, for
// driving storage failure paths in manager tests.
type MockStore struct {
	storage.Store
	PutFn func(ctx context.Context, item *domain.HistoryItem) error
}

// NewMockStore creates a MockStore over a fresh memory backend.
func NewMockStore(maxItems int) *MockStore {
	return &MockStore{Store: memory.New(maxItems)}
}

// Put delegates to PutFn when set.
func (m *MockStore) Put(ctx context.Context, item *domain.HistoryItem) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, item)
	}
	return m.Store.Put(ctx, item)
}

// HistoryItem builds a minimal valid contract history record.
func HistoryItem(id string, ts time.Time) *domain.HistoryItem {
	input := fmt.Sprintf(`{"location":{"state":"TX","city":"Austin"},"hourlyRate":%d}`, 300)
	return &domain.HistoryItem{
		ID:        id,
		Type:      domain.TypeContract,
		Input:     json.RawMessage(input),
		Result:    json.RawMessage(`{"totals":{"grossPay":"140400"}}`),
		Timestamp: ts,
		Name:      "Contract " + id,
	}
}
