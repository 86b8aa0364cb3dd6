// Package history is the stateless façade over the storage backends:
// save/query/annotate/export calculation records. It never caches across
// calls.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/medlocum/locumpay/engine/internal/domain"
	"github.com/medlocum/locumpay/engine/internal/storage"
)

// Manager provides the public calculation-history operations over a Store.
type Manager struct {
	store  storage.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewManager creates a new Manager.
func NewManager(store storage.Store, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: logger.With().Str("component", "history").Logger(),
		now:    time.Now,
	}
}

// Save persists a new record. A missing id or timestamp is assigned. When
// the backend reports it is full, the oldest ~20% of records are evicted and
// the write retried once; a second failure surfaces to the caller.
func (m *Manager) Save(ctx context.Context, item *domain.HistoryItem) (*domain.HistoryItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = m.now().UTC()
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := m.putWithRecovery(ctx, item); err != nil {
		return nil, err
	}
	m.logger.Debug().Str("id", item.ID).Str("type", string(item.Type)).Msg("Saved calculation")
	return item, nil
}

// Update applies a partial update to an existing record.
func (m *Manager) Update(ctx context.Context, id string, upd domain.HistoryUpdate) (*domain.HistoryItem, error) {
	item, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		item.Name = *upd.Name
	}
	if upd.Description != nil {
		item.Description = *upd.Description
	}
	if upd.Tags != nil {
		item.Tags = append([]string(nil), (*upd.Tags)...)
	}
	if upd.IsFavorite != nil {
		item.IsFavorite = *upd.IsFavorite
	}
	if upd.Metadata != nil {
		meta := *upd.Metadata
		item.Metadata = &meta
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := m.store.Put(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a record.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// Get returns a record by id.
func (m *Manager) Get(ctx context.Context, id string) (*domain.HistoryItem, error) {
	return m.store.Get(ctx, id)
}

// List returns one page of matching records. The default sort is timestamp
// descending.
func (m *Manager) List(ctx context.Context, filter domain.HistoryFilter, sortBy domain.HistorySort, page domain.PageRequest) (*domain.HistoryPage, error) {
	items, total, err := m.store.List(ctx, filter, sortBy, page)
	if err != nil {
		return nil, err
	}
	return &domain.HistoryPage{
		Items:   items,
		Total:   total,
		HasMore: page.Offset()+len(items) < total,
	}, nil
}

// Clear deletes all matching records and reports how many were removed.
func (m *Manager) Clear(ctx context.Context, filter domain.HistoryFilter) (int, error) {
	removed, err := m.store.Clear(ctx, filter)
	if err != nil {
		return 0, err
	}
	m.logger.Info().Int("removed", removed).Msg("Cleared calculation history")
	return removed, nil
}

// Export returns every record, newest first.
func (m *Manager) Export(ctx context.Context) ([]*domain.HistoryItem, error) {
	return m.all(ctx, domain.HistoryFilter{})
}

// Import saves records that do not already exist. Existing ids win:
// an imported record never overwrites a stored one. Returns how many records
// were added and how many were skipped.
func (m *Manager) Import(ctx context.Context, items []*domain.HistoryItem) (added, skipped int, err error) {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return added, skipped, fmt.Errorf("import %s: %w", item.ID, err)
		}
		if _, err := m.store.Get(ctx, item.ID); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return added, skipped, err
		}
		if err := m.putWithRecovery(ctx, item); err != nil {
			return added, skipped, err
		}
		added++
	}
	m.logger.Info().Int("added", added).Int("skipped", skipped).Msg("Imported calculation history")
	return added, skipped, nil
}

// ToggleFavorite flips the favorite flag and returns the updated record.
func (m *Manager) ToggleFavorite(ctx context.Context, id string) (*domain.HistoryItem, error) {
	item, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.IsFavorite = !item.IsFavorite
	if err := m.store.Put(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// AddTags attaches tags to a record, ignoring duplicates.
func (m *Manager) AddTags(ctx context.Context, id string, tags ...string) (*domain.HistoryItem, error) {
	item, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		if !item.HasTag(tag) {
			item.Tags = append(item.Tags, tag)
		}
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := m.store.Put(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveTags detaches tags from a record.
func (m *Manager) RemoveTags(ctx context.Context, id string, tags ...string) (*domain.HistoryItem, error) {
	item, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	remove := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		remove[tag] = struct{}{}
	}
	kept := item.Tags[:0]
	for _, tag := range item.Tags {
		if _, drop := remove[tag]; !drop {
			kept = append(kept, tag)
		}
	}
	item.Tags = kept
	if err := m.store.Put(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Recent returns the n most recent records.
func (m *Manager) Recent(ctx context.Context, n int) ([]*domain.HistoryItem, error) {
	if n < 1 {
		return nil, domain.ErrPageInvalid
	}
	items, _, err := m.store.List(ctx, domain.HistoryFilter{}, domain.HistorySort{}, domain.PageRequest{Page: 1, PageSize: n})
	return items, err
}

// Favorites returns every favorited record, newest first.
func (m *Manager) Favorites(ctx context.Context) ([]*domain.HistoryItem, error) {
	fav := true
	return m.all(ctx, domain.HistoryFilter{Favorite: &fav})
}

// Search returns one page of records whose name, description, tags, or
// serialized input contain the query.
func (m *Manager) Search(ctx context.Context, query string, page domain.PageRequest) (*domain.HistoryPage, error) {
	return m.List(ctx, domain.HistoryFilter{Query: query}, domain.HistorySort{}, page)
}

// CreateShareLink attaches shareable-link metadata to a record. ttl <= 0
// means the link never expires.
func (m *Manager) CreateShareLink(ctx context.Context, id string, visibility domain.Visibility, ttl time.Duration) (*domain.SavedCalculation, error) {
	if !visibility.Valid() {
		return nil, domain.ErrVisibilityInvalid
	}
	item, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Share = &domain.ShareInfo{
		ShareID:    uuid.NewString(),
		Visibility: visibility,
	}
	if ttl > 0 {
		expires := m.now().UTC().Add(ttl)
		item.ExpiresAt = &expires
	} else {
		item.ExpiresAt = nil
	}
	if err := m.store.Put(ctx, item); err != nil {
		return nil, err
	}
	return &domain.SavedCalculation{
		HistoryItem: *item,
		ShareID:     item.Share.ShareID,
		Visibility:  item.Share.Visibility,
	}, nil
}

// Duplicate copies a record under a fresh id. The copy is not favorited and
// carries no share metadata.
func (m *Manager) Duplicate(ctx context.Context, id string) (*domain.HistoryItem, error) {
	item, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dup := item.Clone()
	dup.ID = uuid.NewString()
	dup.Timestamp = m.now().UTC()
	dup.IsFavorite = false
	dup.Share = nil
	dup.ExpiresAt = nil
	if dup.Name != "" {
		dup.Name += " (Copy)"
	}
	if err := m.putWithRecovery(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// Analytics aggregates the records in [from, to]. Derived per call, never
// cached.
func (m *Manager) Analytics(ctx context.Context, from, to time.Time) (*domain.HistoryAnalytics, error) {
	items, err := m.all(ctx, domain.HistoryFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	out := &domain.HistoryAnalytics{
		CountByType: make(map[domain.CalculationType]int),
		TotalCount:  len(items),
	}
	states := make(map[string]int)
	rates := make(map[string]int)
	for _, item := range items {
		out.CountByType[item.Type]++
		if item.IsFavorite {
			out.FavoriteCount++
		}
		probe := probeInput(item.Input)
		if probe.state != "" {
			states[probe.state]++
		}
		if probe.rate != "" {
			rates[probe.rate]++
		}
	}

	days := to.Sub(from).Hours() / 24
	if days < 1 {
		days = 1
	}
	out.AveragePerDay = float64(len(items)) / days
	out.TopStates = topN(states, 5)
	out.TopRates = topN(rates, 5)
	return out, nil
}

func (m *Manager) putWithRecovery(ctx context.Context, item *domain.HistoryItem) error {
	err := m.store.Put(ctx, item)
	if !errors.Is(err, domain.ErrStorageCapacity) {
		return err
	}

	count, cerr := m.store.Count(ctx)
	if cerr != nil {
		return cerr
	}
	evict := (count + 4) / 5 // oldest ~20%, favorites included
	oldest, _, lerr := m.store.List(ctx, domain.HistoryFilter{},
		domain.HistorySort{Field: domain.SortByTimestamp, Ascending: true},
		domain.PageRequest{Page: 1, PageSize: evict})
	if lerr != nil {
		return lerr
	}
	for _, old := range oldest {
		if derr := m.store.Delete(ctx, old.ID); derr != nil {
			return derr
		}
	}
	m.logger.Warn().Int("evicted", len(oldest)).Msg("Evicted oldest records to free capacity")

	return m.store.Put(ctx, item)
}

func (m *Manager) all(ctx context.Context, filter domain.HistoryFilter) ([]*domain.HistoryItem, error) {
	count, err := m.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []*domain.HistoryItem{}, nil
	}
	items, _, err := m.store.List(ctx, filter, domain.HistorySort{}, domain.PageRequest{Page: 1, PageSize: count})
	return items, err
}

// inputProbe pulls the analytics-relevant fields out of an opaque input
// payload; contract inputs carry location/hourlyRate, paycheck inputs carry
// workState.
type inputProbe struct {
	Location struct {
		State string `json:"state"`
	} `json:"location"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
	WorkState  string          `json:"workState"`
}

type probeResult struct {
	state string
	rate  string
}

func probeInput(input json.RawMessage) probeResult {
	var p inputProbe
	if err := json.Unmarshal(input, &p); err != nil {
		return probeResult{}
	}
	var out probeResult
	switch {
	case p.Location.State != "":
		out.state = p.Location.State
	case p.WorkState != "":
		out.state = p.WorkState
	}
	if !p.HourlyRate.IsZero() {
		out.rate = p.HourlyRate.Round(0).StringFixed(0)
	}
	return out
}

// topN returns the n most frequent values, count descending, value ascending
// on ties so output stays deterministic.
func topN(counts map[string]int, n int) []domain.FrequencyCount {
	out := make([]domain.FrequencyCount, 0, len(counts))
	for value, count := range counts {
		out = append(out, domain.FrequencyCount{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
