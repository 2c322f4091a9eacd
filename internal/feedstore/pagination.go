package feedstore

import "github.com/mholloway/medley/internal/feed"

// PageState tracks pagination for one content type.
type PageState struct {
	CurrentPage int  // 1-based
	HasMore     bool // set only by upstream signal, never inferred
	IsLoading   bool
	TotalLoaded int
}

func initialPageState() PageState {
	return PageState{CurrentPage: 1, HasMore: true}
}

func initialPages() map[feed.Type]*PageState {
	pages := make(map[feed.Type]*PageState, len(feed.Types))
	for _, t := range feed.Types {
		p := initialPageState()
		pages[t] = &p
	}
	return pages
}

// advance moves the cursor forward. Called at request issuance, not
// completion, so a failed fetch still skips its page. Kept in one place so
// the policy can be flipped without touching call sites.
func advance(p *PageState) {
	p.CurrentPage++
}

// Page returns a copy of the pagination state for the given type.
func (s *Store) Page(t feed.Type) PageState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.pages[t]; ok {
		return *p
	}
	return initialPageState()
}

// MarkLoading flags a single source type as having a fetch in flight.
func (s *Store) MarkLoading(t feed.Type, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pages[t]; ok {
		p.IsLoading = loading
	}
}

// SetHasMore records the upstream end-of-results signal for a type.
func (s *Store) SetHasMore(t feed.Type, hasMore bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pages[t]; ok {
		p.HasMore = hasMore
	}
}

// IncrementPage optimistically advances the cursor for a type.
func (s *Store) IncrementPage(t feed.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pages[t]; ok {
		advance(p)
	}
}

// addLoaded bumps the loaded count. Callers hold s.mu.
func (s *Store) addLoaded(t feed.Type, n int) {
	if p, ok := s.pages[t]; ok {
		p.TotalLoaded += n
	}
}
