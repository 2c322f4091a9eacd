package feedstore

import (
	"time"

	"github.com/mholloway/medley/internal/feed"
)

// Snapshot is the durable shape of the feed state. The draft buffer and the
// transient loading/error flags are deliberately absent - they must never be
// persisted.
type Snapshot struct {
	Items          []feed.Item
	Pages          map[feed.Type]PageState
	TrendingItems  []feed.Item
	TrendingSynced time.Time
	HasInitialData bool
	HasCustomOrder bool
	LastUpdated    time.Time
}

// Snapshot exports the persistent portion of the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]feed.Item, len(s.items))
	copy(items, s.items)

	trending := make([]feed.Item, len(s.trending.items))
	copy(trending, s.trending.items)

	pages := make(map[feed.Type]PageState, len(s.pages))
	for t, p := range s.pages {
		snap := *p
		snap.IsLoading = false
		pages[t] = snap
	}

	return Snapshot{
		Items:          items,
		Pages:          pages,
		TrendingItems:  trending,
		TrendingSynced: s.trending.lastUpdated,
		HasInitialData: s.hasInitialData,
		HasCustomOrder: s.hasCustomOrder,
		LastUpdated:    s.lastUpdated,
	}
}

// Restore replaces the store's persistent state from a snapshot. Missing
// substructures fall back to initial-state defaults, so a snapshot from an
// older shape loads instead of failing. Transient state resets to clean.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]feed.Item, len(snap.Items))
	copy(s.items, snap.Items)

	s.pages = initialPages()
	for t, p := range snap.Pages {
		if !t.Valid() {
			continue
		}
		restored := p
		restored.IsLoading = false
		if restored.CurrentPage < 1 {
			restored.CurrentPage = 1
		}
		s.pages[t] = &restored
	}

	s.trending = trendingState{}
	if len(snap.TrendingItems) > 0 {
		s.trending.items = make([]feed.Item, len(snap.TrendingItems))
		copy(s.trending.items, snap.TrendingItems)
		s.trending.lastUpdated = snap.TrendingSynced
	}

	s.hasInitialData = snap.HasInitialData
	s.hasCustomOrder = snap.HasCustomOrder
	s.lastUpdated = snap.LastUpdated

	s.draft = nil
	s.hasUnsaved = false
	s.loading = false
	s.err = ""
}
