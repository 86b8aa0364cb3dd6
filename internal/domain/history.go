package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var (
	ErrHistoryIDRequired  = fmt.Errorf("%w: history item id is required", ErrInvalidInput)
	ErrHistoryTypeInvalid = fmt.Errorf("%w: unknown calculation type", ErrInvalidInput)
	ErrHistoryNameTooLong = fmt.Errorf("%w: name exceeds maximum length", ErrInvalidInput)
	ErrHistoryTagTooLong  = fmt.Errorf("%w: tag exceeds maximum length", ErrInvalidInput)
	ErrPageInvalid        = fmt.Errorf("%w: page and pageSize must be positive", ErrInvalidInput)
	ErrVisibilityInvalid  = fmt.Errorf("%w: unknown share visibility", ErrInvalidInput)
)

type CalculationType string

const (
	TypeContract   CalculationType = "contract"
	TypePaycheck   CalculationType = "paycheck"
	TypeComparison CalculationType = "comparison"
)

func (t CalculationType) Valid() bool {
	switch t {
	case TypeContract, TypePaycheck, TypeComparison:
		return true
	}
	return false
}

// HistoryMetadata carries optional client context recorded with an item.
type HistoryMetadata struct {
	Device   string `json:"device,omitempty"`
	Version  string `json:"version,omitempty"`
	Location string `json:"location,omitempty"`
}

// ShareInfo is the shareable-link metadata attached to a shared item.
type ShareInfo struct {
	ShareID    string     `json:"shareId"`
	Visibility Visibility `json:"visibility"`
}

// HistoryItem is one persisted calculation record. Input and Result are
// opaque type-specific payloads; the engine structs serialize into them.
type HistoryItem struct {
	ID          string           `json:"id"`
	Type        CalculationType  `json:"type"`
	Input       json.RawMessage  `json:"input"`
	Result      json.RawMessage  `json:"result"`
	Timestamp   time.Time        `json:"timestamp"`
	UserID      string           `json:"userId,omitempty"`
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	IsFavorite  bool             `json:"isFavorite"`
	ExpiresAt   *time.Time       `json:"expiresAt,omitempty"`
	Metadata    *HistoryMetadata `json:"metadata,omitempty"`
	Share       *ShareInfo       `json:"share,omitempty"`
}

func (h *HistoryItem) Validate() error {
	if h.ID == "" {
		return ErrHistoryIDRequired
	}
	if !h.Type.Valid() {
		return ErrHistoryTypeInvalid
	}
	if len(h.Name) > MaxNameLength {
		return ErrHistoryNameTooLong
	}
	for _, tag := range h.Tags {
		if len(tag) > MaxTagLength {
			return ErrHistoryTagTooLong
		}
	}
	return nil
}

// HasTag reports whether the item carries the given tag.
func (h *HistoryItem) HasTag(tag string) bool {
	for _, t := range h.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so stored items never alias caller memory.
func (h *HistoryItem) Clone() *HistoryItem {
	c := *h
	c.Input = append(json.RawMessage(nil), h.Input...)
	c.Result = append(json.RawMessage(nil), h.Result...)
	c.Tags = append([]string(nil), h.Tags...)
	if h.ExpiresAt != nil {
		exp := *h.ExpiresAt
		c.ExpiresAt = &exp
	}
	if h.Metadata != nil {
		meta := *h.Metadata
		c.Metadata = &meta
	}
	if h.Share != nil {
		share := *h.Share
		c.Share = &share
	}
	return &c
}

type Visibility string

const (
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPublic   Visibility = "public"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityUnlisted, VisibilityPublic:
		return true
	}
	return false
}

// SavedCalculation is a HistoryItem with shareable-link metadata attached.
type SavedCalculation struct {
	HistoryItem
	ShareID    string     `json:"shareId"`
	Visibility Visibility `json:"visibility"`
}

// HistoryUpdate is a partial update; nil fields are left untouched.
type HistoryUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Tags        *[]string        `json:"tags,omitempty"`
	IsFavorite  *bool            `json:"isFavorite,omitempty"`
	Metadata    *HistoryMetadata `json:"metadata,omitempty"`
}

// HistoryFilter selects history items. All set predicates AND together.
type HistoryFilter struct {
	Type     *CalculationType
	UserID   *string
	From     *time.Time
	To       *time.Time
	Tags     []string // intersect: item must carry at least one
	Favorite *bool
	Query    string // substring over name, description, tags, serialized input
}

// Matches reports whether the item satisfies every set predicate.
func (f HistoryFilter) Matches(item *HistoryItem) bool {
	if f.Type != nil && item.Type != *f.Type {
		return false
	}
	if f.UserID != nil && item.UserID != *f.UserID {
		return false
	}
	if f.From != nil && item.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && item.Timestamp.After(*f.To) {
		return false
	}
	if f.Favorite != nil && item.IsFavorite != *f.Favorite {
		return false
	}
	if len(f.Tags) > 0 {
		found := false
		for _, tag := range f.Tags {
			if item.HasTag(tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Query != "" && !matchesQuery(item, f.Query) {
		return false
	}
	return true
}

func matchesQuery(item *HistoryItem, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(item.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(item.Description), q) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(string(item.Input)), q)
}

type SortField string

const (
	SortByTimestamp SortField = "timestamp"
	SortByName      SortField = "name"
	SortByType      SortField = "type"
)

// HistorySort orders a listing. The zero value means timestamp descending.
type HistorySort struct {
	Field     SortField
	Ascending bool
}

// Less compares two items under the sort. Equal keys fall back to timestamp
// descending so listings stay deterministic.
func (s HistorySort) Less(a, b *HistoryItem) bool {
	field := s.Field
	if field == "" {
		field = SortByTimestamp
	}
	var less, equal bool
	switch field {
	case SortByName:
		less, equal = a.Name < b.Name, a.Name == b.Name
	case SortByType:
		less, equal = a.Type < b.Type, a.Type == b.Type
	default:
		less, equal = a.Timestamp.Before(b.Timestamp), a.Timestamp.Equal(b.Timestamp)
	}
	if equal && field != SortByTimestamp {
		return a.Timestamp.After(b.Timestamp)
	}
	if s.Ascending {
		return less
	}
	return !less && !equal
}

// PageRequest selects one page of a listing. Page is 1-based.
type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) Validate() error {
	if p.Page < 1 || p.PageSize < 1 {
		return ErrPageInvalid
	}
	return nil
}

// Offset returns the number of items to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// HistoryPage is one page of history items. Derived per call, never stored.
type HistoryPage struct {
	Items   []*HistoryItem `json:"items"`
	Total   int            `json:"total"`
	HasMore bool           `json:"hasMore"`
}

// FrequencyCount pairs a value with how often it occurred.
type FrequencyCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// HistoryAnalytics is a read-only aggregate over a date range.
type HistoryAnalytics struct {
	TotalCount    int                     `json:"totalCount"`
	CountByType   map[CalculationType]int `json:"countByType"`
	AveragePerDay float64                 `json:"averagePerDay"`
	TopStates     []FrequencyCount        `json:"topStates"`
	TopRates      []FrequencyCount        `json:"topRates"`
	FavoriteCount int                     `json:"favoriteCount"`
}
