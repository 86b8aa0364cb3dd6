package history

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlocum/locumpay/engine/internal/domain"
	"github.com/medlocum/locumpay/engine/internal/storage/memory"
	"github.com/medlocum/locumpay/engine/internal/testutil"
)

func newTestManager(maxItems int) *Manager {
	return NewManager(memory.New(maxItems), zerolog.Nop())
}

func TestSaveAssignsIDAndTimestamp(t *testing.T) {
	m := newTestManager(10)
	ctx := context.Background()

	item := testutil.HistoryItem("", time.Time{})
	saved, err := m.Save(ctx, item)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.Timestamp.IsZero())

	got, err := m.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
}

func TestUpdatePartial(t *testing.T) {
	m := newTestManager(10)
	ctx := context.Background()

	saved, err := m.Save(ctx, testutil.HistoryItem("a", time.Now().UTC()))
	require.NoError(t, err)

	name := "Dallas ICU offer"
	fav := true
	updated, err := m.Update(ctx, saved.ID, domain.HistoryUpdate{Name: &name, IsFavorite: &fav})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.True(t, updated.IsFavorite)
	// Untouched fields survive.
	assert.Equal(t, saved.Type, updated.Type)
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	m := newTestManager(10)

	name := "x"
	_, err := m.Update(context.Background(), "missing", domain.HistoryUpdate{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteMissingReturnsNotFound(t *testing.T) {
	m := newTestManager(10)

	err := m.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPaginationHasMore(t *testing.T) {
	m := newTestManager(20)
	ctx := context.Background()
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		_, err := m.Save(ctx, testutil.HistoryItem(fmt.Sprintf("item-%d", i), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	page1, err := m.List(ctx, domain.HistoryFilter{}, domain.HistorySort{}, domain.PageRequest{Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, page1.Items, 3)
	assert.Equal(t, 7, page1.Total)
	assert.True(t, page1.HasMore)

	page3, err := m.List(ctx, domain.HistoryFilter{}, domain.HistorySort{}, domain.PageRequest{Page: 3, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestManager(20)
	dst := newTestManager(20)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, id := range []string{"a", "b", "c"} {
		_, err := src.Save(ctx, testutil.HistoryItem(id, now))
		require.NoError(t, err)
	}

	exported, err := src.Export(ctx)
	require.NoError(t, err)
	require.Len(t, exported, 3)

	// Pre-existing record with id "b" must win over the import.
	existing := testutil.HistoryItem("b", now)
	existing.Name = "keep me"
	_, err = dst.Save(ctx, existing)
	require.NoError(t, err)

	added, skipped, err := dst.Import(ctx, exported)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, skipped)

	kept, err := dst.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "keep me", kept.Name)

	for _, id := range []string{"a", "c"} {
		_, err := dst.Get(ctx, id)
		assert.NoError(t, err)
	}
}

func TestToggleFavoriteAndFavorites(t *testing.T) {
	m := newTestManager(10)
	ctx := context.Background()

	saved, err := m.Save(ctx, testutil.HistoryItem("a", time.Now().UTC()))
	require.NoError(t, err)

	toggled, err := m.ToggleFavorite(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsFavorite)

	favs, err := m.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, saved.ID, favs[0].ID)

	toggled, err = m.ToggleFavorite(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsFavorite)
}

func TestAddRemoveTags(t *testing.T) {
	m := newTestManager(10)
	ctx := context.Background()

	saved, err := m.Save(ctx, testutil.HistoryItem("a", time.Now().UTC()))
	require.NoError(t, err)

	tagged, err := m.AddTags(ctx, saved.ID, "icu", "nights", "icu")
	require.NoError(t, err)
	assert.Equal(t, []string{"icu", "nights"}, tagged.Tags)

	untagged, err := m.RemoveTags(ctx, saved.ID, "icu")
	require.NoError(t, err)
	assert.Equal(t, []string{"nights"}, untagged.Tags)
}

func TestSearchMatchesNameAndInput(t *testing.T) {
	m := newTestManager(10)
	ctx := context.Background()
	now := time.Now().UTC()

	named := testutil.HistoryItem("a", now)
	named.Name = "Houston cardiology"
	_, err := m.Save(ctx, named)
	require.NoError(t, err)
	_, err = m.Save(ctx, testutil.HistoryItem("b", now))
	require.NoError(t, err)

	page, err := m.Search(ctx, "cardiology", domain.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a", page.Items[0].ID)

	// Serialized input payloads are searchable too.
	page, err = m.Search(ctx, "austin", domain.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestRecent(t *testing.T) {
	m := newTestManager(10)
	ctx := context.Background()
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		_, err := m.Save(ctx, testutil.HistoryItem(fmt.Sprintf("item-%d", i), base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	recent, err := m.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "item-3", recent[0].ID)
	assert.Equal(t, "item-2", recent[1].ID)
}

func TestCapacityRecoveryEvictsOldestFirst(t *testing.T) {
	m := newTestManager(5)
	ctx := context.Background()
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		item := testutil.HistoryItem(fmt.Sprintf("item-%d", i), base.Add(time.Duration(i)*time.Hour))
		// Favorites are not exempt from eviction.
		if i == 0 {
			item.IsFavorite = true
		}
		_, err := m.Save(ctx, item)
		require.NoError(t, err)
	}

	_, err := m.Save(ctx, testutil.HistoryItem("item-5", base.Add(5*time.Hour)))
	require.NoError(t, err)

	// The oldest (favorited) record was evicted to make room.
	_, err = m.Get(ctx, "item-0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = m.Get(ctx, "item-5")
	assert.NoError(t, err)
}

func TestCapacityRecoverySurfacesSecondFailure(t *testing.T) {
	store := testutil.NewMockStore(10)
	store.PutFn = func(ctx context.Context, item *domain.HistoryItem) error {
		return domain.ErrStorageCapacity
	}
	m := NewManager(store, zerolog.Nop())

	_, err := m.Save(context.Background(), testutil.HistoryItem("a", time.Now().UTC()))
	assert.ErrorIs(t, err, domain.ErrStorageCapacity)
}

func TestCreateShareLink(t *testing.T) {
	m := newTestManager(10)
	ctx := context.Background()

	saved, err := m.Save(ctx, testutil.HistoryItem("a", time.Now().UTC()))
	require.NoError(t, err)

	shared, err := m.CreateShareLink(ctx, saved.ID, domain.VisibilityUnlisted, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, shared.ShareID)
	assert.Equal(t, domain.VisibilityUnlisted, shared.Visibility)
	require.NotNil(t, shared.ExpiresAt)
	assert.True(t, shared.ExpiresAt.After(time.Now()))

	// Share metadata persists on the stored record.
	got, err := m.Get(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Share)
	assert.Equal(t, shared.ShareID, got.Share.ShareID)
}

func TestCreateShareLinkInvalidVisibility(t *testing.T) {
	m := newTestManager(10)

	_, err := m.CreateShareLink(context.Background(), "a", "everyone", 0)
	assert.ErrorIs(t, err, domain.ErrVisibilityInvalid)
}

func TestDuplicate(t *testing.T) {
	m := newTestManager(10)
	ctx := context.Background()

	original := testutil.HistoryItem("a", time.Now().UTC())
	original.Name = "Original"
	original.IsFavorite = true
	_, err := m.Save(ctx, original)
	require.NoError(t, err)

	dup, err := m.Duplicate(ctx, "a")
	require.NoError(t, err)
	assert.NotEqual(t, "a", dup.ID)
	assert.Equal(t, "Original (Copy)", dup.Name)
	assert.False(t, dup.IsFavorite)
	assert.Nil(t, dup.Share)
	assert.Equal(t, original.Input, dup.Input)
}

func TestAnalytics(t *testing.T) {
	m := newTestManager(20)
	ctx := context.Background()
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		item := testutil.HistoryItem(fmt.Sprintf("tx-%d", i), base.Add(time.Duration(i)*time.Hour))
		_, err := m.Save(ctx, item)
		require.NoError(t, err)
	}
	ca := testutil.HistoryItem("ca-1", base.Add(4*time.Hour))
	ca.Input = json.RawMessage(`{"location":{"state":"CA"},"hourlyRate":275.50}`)
	ca.IsFavorite = true
	_, err := m.Save(ctx, ca)
	require.NoError(t, err)

	paycheck := testutil.HistoryItem("pc-1", base.Add(5*time.Hour))
	paycheck.Type = domain.TypePaycheck
	paycheck.Input = json.RawMessage(`{"grossPay":3000,"workState":"WA"}`)
	_, err = m.Save(ctx, paycheck)
	require.NoError(t, err)

	analytics, err := m.Analytics(ctx, base, base.Add(48*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 5, analytics.TotalCount)
	assert.Equal(t, 4, analytics.CountByType[domain.TypeContract])
	assert.Equal(t, 1, analytics.CountByType[domain.TypePaycheck])
	assert.Equal(t, 1, analytics.FavoriteCount)
	assert.InDelta(t, 2.5, analytics.AveragePerDay, 0.001)

	require.NotEmpty(t, analytics.TopStates)
	assert.Equal(t, "TX", analytics.TopStates[0].Value)
	assert.Equal(t, 3, analytics.TopStates[0].Count)

	require.NotEmpty(t, analytics.TopRates)
	assert.Equal(t, "300", analytics.TopRates[0].Value)
}
