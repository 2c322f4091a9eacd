package search

import (
	"strings"
	"sync"

	"github.com/mholloway/medley/internal/feed"
)

// historyLimit caps how many past queries are remembered.
const historyLimit = 10

// State holds the current search session: query, derived results, and a
// small recent-query history. It never writes back into the feed store.
type State struct {
	mu        sync.RWMutex
	query     string
	results   []feed.Item
	searching bool
	history   []string
	filters   Filters
}

// NewState creates an empty search state with relevance ordering.
func NewState() *State {
	return &State{filters: Filters{SortBy: SortByRelevance}}
}

// SetQuery records the active query string.
func (st *State) SetQuery(q string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.query = q
}

// Query returns the active query string.
func (st *State) Query() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.query
}

// SetFilters replaces the active filters.
func (st *State) SetFilters(f Filters) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if f.SortBy == "" {
		f.SortBy = SortByRelevance
	}
	st.filters = f
}

// Filters returns the active filters.
func (st *State) Filters() Filters {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.filters
}

// Run executes the search against the given collection and stores the
// derived results. The source collection is read-only to this package.
func (st *State) Run(items []feed.Item) []feed.Item {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.searching = true
	st.results = Search(st.query, items, st.filters)
	st.searching = false
	st.remember(st.query)

	out := make([]feed.Item, len(st.results))
	copy(out, st.results)
	return out
}

// Results returns a copy of the last derived results.
func (st *State) Results() []feed.Item {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]feed.Item, len(st.results))
	copy(out, st.results)
	return out
}

// History returns past queries, most recent first.
func (st *State) History() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]string, len(st.history))
	copy(out, st.history)
	return out
}

// Clear resets query and results, keeping history.
func (st *State) Clear() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.query = ""
	st.results = nil
	st.searching = false
}

// remember adds a query to the history: trimmed, deduped, capped. Callers
// hold st.mu.
func (st *State) remember(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}
	for _, h := range st.history {
		if h == q {
			return
		}
	}
	st.history = append([]string{q}, st.history...)
	if len(st.history) > historyLimit {
		st.history = st.history[:historyLimit]
	}
}
