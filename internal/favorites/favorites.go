// Package favorites tracks the user's favorited items.
//
// Membership is by exact item ID. The set keeps full item copies so a
// favorite still renders after the item ages out of the feed.
package favorites

import (
	"sync"
	"time"

	"github.com/mholloway/medley/internal/feed"
)

// Set is a concurrency-safe, insertion-ordered favorites collection.
type Set struct {
	mu          sync.RWMutex
	order       []string
	byID        map[string]feed.Item
	lastUpdated time.Time

	now func() time.Time
}

// NewSet returns an empty favorites set.
func NewSet() *Set {
	return &Set{
		byID: make(map[string]feed.Item),
		now:  time.Now,
	}
}

// Add inserts the item. Re-adding an existing favorite refreshes its stored
// copy but keeps its position.
func (s *Set) Add(item feed.Item) {
	if item.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[item.ID]; !ok {
		s.order = append(s.order, item.ID)
	}
	s.byID[item.ID] = item
	s.lastUpdated = s.now()
}

// Remove drops the item with the given ID. Unknown IDs are a no-op.
func (s *Set) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.lastUpdated = s.now()
}

// Toggle adds the item when absent and removes it when present. Returns
// true when the item is a favorite after the call.
func (s *Set) Toggle(item feed.Item) bool {
	if s.Contains(item.ID) {
		s.Remove(item.ID)
		return false
	}
	s.Add(item)
	return true
}

// Contains reports whether the ID is favorited.
func (s *Set) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok
}

// Items returns the favorites in insertion order.
func (s *Set) Items() []feed.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]feed.Item, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.byID[id])
	}
	return items
}

// Count returns the number of favorites.
func (s *Set) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Clear removes every favorite.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.byID = make(map[string]feed.Item)
	s.lastUpdated = s.now()
}

// LastUpdated returns the time of the most recent mutation.
func (s *Set) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Replace swaps the whole collection, preserving the given order. Used when
// restoring persisted state.
func (s *Set) Replace(items []feed.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = s.order[:0]
	s.byID = make(map[string]feed.Item, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if _, ok := s.byID[item.ID]; ok {
			continue
		}
		s.order = append(s.order, item.ID)
		s.byID[item.ID] = item
	}
}
