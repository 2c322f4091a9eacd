// Package feedstore owns the unified feed collection: the committed item
// order, the draft reorder buffer, per-type pagination cursors, and the
// trending sub-collection.
//
// Store is an explicit handle - callers construct one and pass it around.
// All methods are safe for concurrent use via an internal mutex, and none of
// the mutating operations return errors: invalid input (bad indices,
// malformed items) degrades silently rather than failing the caller.
package feedstore

import (
	"sync"
	"time"

	"github.com/mholloway/medley/internal/dedup"
	"github.com/mholloway/medley/internal/feed"
	"github.com/mholloway/medley/internal/logging"
)

// ActiveView says which collection the rendering layer should display.
type ActiveView int

const (
	// ViewCommitted shows the saved item order.
	ViewCommitted ActiveView = iota
	// ViewDraft shows the in-progress reorder buffer.
	ViewDraft
)

// trendingState is the independently loaded trending sub-collection.
type trendingState struct {
	items       []feed.Item
	loading     bool
	err         string
	lastUpdated time.Time
}

// Store holds the feed state and orchestrates merges through the dedup
// engine. The draft buffer is only ever promoted wholesale by SaveChanges;
// nothing else writes it into the committed collection.
type Store struct {
	mu sync.RWMutex

	items []feed.Item // committed order
	draft []feed.Item // empty unless a reorder session is in progress

	loading        bool
	err            string
	hasInitialData bool
	hasCustomOrder bool
	hasUnsaved     bool
	lastUpdated    time.Time

	pages    map[feed.Type]*PageState
	trending trendingState

	now func() time.Time
}

// New creates an empty feed store.
func New() *Store {
	return &Store{
		items: []feed.Item{},
		pages: initialPages(),
		now:   time.Now,
	}
}

// MergeBatch merges a freshly fetched batch for one content type into the
// committed collection. Malformed items are dropped individually; the rest
// of the batch still merges. Safe to call with an empty batch.
//
// Merging clears any previous error - a successful fetch supersedes it.
func (s *Store) MergeBatch(t feed.Type, batch []feed.Item) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	valid := batch[:0:0]
	for _, item := range batch {
		if item.Valid() {
			valid = append(valid, item)
			continue
		}
		logging.Debug("dropping malformed item", "type", t, "id", item.ID, "title", item.Title)
	}

	fresh := dedup.FilterNew(s.items, valid)
	// Second pass over the whole collection guards against collisions that
	// only appear once the batch itself is appended.
	s.items = dedup.Merge(s.items, fresh)

	s.hasInitialData = true
	s.lastUpdated = s.now()
	s.err = ""
	s.addLoaded(t, len(fresh))

	return len(fresh)
}

// SetLoading sets the coarse shared loading flag. Concurrent fetches race on
// it last-write-wins; there is one spinner, not four.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records a fetch error. Multiple concurrent failures collapse to
// the last one recorded. Pass "" to clear.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

// Reorder moves the element at dragIndex to hoverIndex within the currently
// active collection and writes the result into the draft buffer. Out-of-range
// indices are a silent no-op.
func (s *Store) Reorder(dragIndex, hoverIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.items
	if len(s.draft) > 0 {
		base = s.draft
	}

	moved, ok := Move(base, dragIndex, hoverIndex)
	if !ok {
		logging.Debug("ignoring reorder with invalid indices",
			"drag", dragIndex, "hover", hoverIndex, "len", len(base))
		return
	}

	s.draft = moved
	s.hasUnsaved = true
}

// SaveChanges promotes the draft buffer into the committed collection. The
// flag transitions happen even when there is no draft to promote.
func (s *Store) SaveChanges() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.draft) > 0 {
		s.items = s.draft
		s.draft = nil
		s.lastUpdated = s.now()
	}
	s.hasCustomOrder = true
	s.hasUnsaved = false
}

// DiscardChanges drops the draft buffer, leaving the committed order intact.
func (s *Store) DiscardChanges() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = nil
	s.hasUnsaved = false
}

// ClearFeed resets the item collections and order flags but keeps
// loading/error state and pagination cursors.
func (s *Store) ClearFeed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []feed.Item{}
	s.draft = nil
	s.hasInitialData = false
	s.hasCustomOrder = false
	s.hasUnsaved = false
	s.lastUpdated = time.Time{}
}

// ClearCache resets everything: items, draft, flags, loading/error, and all
// pagination cursors back to page 1. Used when the user explicitly
// invalidates local state.
func (s *Store) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []feed.Item{}
	s.draft = nil
	s.loading = false
	s.err = ""
	s.hasInitialData = false
	s.hasCustomOrder = false
	s.hasUnsaved = false
	s.lastUpdated = time.Time{}
	s.pages = initialPages()
	s.trending = trendingState{}
}

// View reports which collection is active.
func (s *Store) View() ActiveView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.draft) > 0 {
		return ViewDraft
	}
	return ViewCommitted
}

// Visible returns a copy of the displayable collection: the draft buffer
// when a reorder session is in progress, the committed order otherwise.
func (s *Store) Visible() []feed.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.items
	if len(s.draft) > 0 {
		src = s.draft
	}
	out := make([]feed.Item, len(src))
	copy(out, src)
	return out
}

// Items returns a copy of the committed collection.
func (s *Store) Items() []feed.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]feed.Item, len(s.items))
	copy(out, s.items)
	return out
}

// ItemCount returns the committed collection size.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Loading reports the coarse shared loading flag.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last recorded fetch error, "" when clear.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// HasInitialData reports whether any batch has ever merged.
func (s *Store) HasInitialData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasInitialData
}

// HasCustomOrder reports whether a save has ever occurred.
func (s *Store) HasCustomOrder() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasCustomOrder
}

// HasUnsavedChanges reports whether a reorder session is in progress.
func (s *Store) HasUnsavedChanges() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasUnsaved
}

// LastUpdated returns the time of the last merge or save.
func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}
