package feedstore

import (
	"time"

	"github.com/mholloway/medley/internal/dedup"
	"github.com/mholloway/medley/internal/feed"
)

// Trending sub-state. Independently sourced and paginated from the main
// feed, but shares the same deduplication engine.

// SetTrendingLoading flags the trending collection as loading.
func (s *Store) SetTrendingLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trending.loading = loading
}

// SetTrendingError records a trending fetch error. Pass "" to clear.
func (s *Store) SetTrendingError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trending.err = msg
	s.trending.loading = false
}

// SetTrending replaces the trending collection with a combined multi-type
// batch. A dedup pass runs over the combined result before it is exposed.
func (s *Store) SetTrending(items []feed.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trending.items = dedup.RemoveDuplicates(items)
	s.trending.loading = false
	s.trending.err = ""
	s.trending.lastUpdated = s.now()
}

// Trending returns a copy of the trending collection.
func (s *Store) Trending() []feed.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]feed.Item, len(s.trending.items))
	copy(out, s.trending.items)
	return out
}

// TrendingLoading reports whether a trending fetch is in flight.
func (s *Store) TrendingLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trending.loading
}

// TrendingErr returns the last trending fetch error, "" when clear.
func (s *Store) TrendingErr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trending.err
}

// TrendingUpdated returns when the trending collection last loaded.
func (s *Store) TrendingUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trending.lastUpdated
}

// TrendingLoadNeeded reports whether a lazy trending load should run: only
// when no load has ever completed and no fetch is in flight. The trigger is
// idempotent - scrolling the trending section into view twice fires once,
// and a completed load that selected zero items does not refetch.
func (s *Store) TrendingLoadNeeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.trending.loading && s.trending.lastUpdated.IsZero()
}

// BeginTrendingLoad claims the lazy trending load. It checks need and sets
// the loading flag under one lock, so concurrent triggers cannot both pass
// the guard; exactly one caller gets true and owns the fetch.
func (s *Store) BeginTrendingLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trending.loading || !s.trending.lastUpdated.IsZero() {
		return false
	}
	s.trending.loading = true
	return true
}
