// Package dedup decides whether two content items represent the same
// real-world thing. All functions are pure: []Item in, []Item out.
//
// Upstream IDs are not globally trustworthy - some providers reuse generic
// IDs and re-fetches of the same page return overlapping items - so identity
// is a layered check: ID, then URL, then type-aware heuristics.
package dedup

import (
	"time"

	"github.com/mholloway/medley/internal/feed"
)

// newsPublishWindow is how far apart two publish times can be while still
// counting as the same news story from the same source.
const newsPublishWindow = time.Hour

// AreDuplicates reports whether a and b represent the same item.
// Symmetric: AreDuplicates(a, b) == AreDuplicates(b, a).
func AreDuplicates(a, b feed.Item) bool {
	if a.ID == b.ID {
		return true
	}

	if a.HasLink() && b.HasLink() && a.URL == b.URL {
		return true
	}

	if a.Title != b.Title || a.Type != b.Type {
		return false
	}

	switch a.Type {
	case feed.TypeNews:
		if a.Source == b.Source {
			diff := a.PublishedAt.Sub(b.PublishedAt)
			if diff < 0 {
				diff = -diff
			}
			return diff < newsPublishWindow
		}
	case feed.TypeMovie:
		return a.Rating == b.Rating && a.PublishedAt.Equal(b.PublishedAt)
	case feed.TypeMusic:
		return a.Artist == b.Artist && a.Album == b.Album
	case feed.TypeSocial:
		return a.Author == b.Author && a.Platform == b.Platform
	}

	return false
}

// RemoveDuplicates filters items so that no kept item is a duplicate of an
// earlier kept item. Order preserving, first occurrence wins.
//
// The scan is O(n^2) in the worst case, which is fine at feed scale
// (hundreds of items). Very large feeds would want an index keyed by
// (type, title) and URL instead.
func RemoveDuplicates(items []feed.Item) []feed.Item {
	if len(items) == 0 {
		return []feed.Item{}
	}

	seen := make(map[string]bool, len(items))
	kept := make([]feed.Item, 0, len(items))

	for _, item := range items {
		if seen[item.ID] {
			continue
		}

		dup := false
		for _, existing := range kept {
			if AreDuplicates(item, existing) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}

		seen[item.ID] = true
		kept = append(kept, item)
	}

	return kept
}

// FilterNew returns the subset of incoming for which no item in existing is a
// duplicate. Used before appending a freshly fetched batch.
func FilterNew(existing, incoming []feed.Item) []feed.Item {
	result := make([]feed.Item, 0, len(incoming))
	for _, item := range incoming {
		if !Exists(existing, item) {
			result = append(result, item)
		}
	}
	return result
}

// Exists reports whether item duplicates anything in existing.
func Exists(existing []feed.Item, item feed.Item) bool {
	for _, e := range existing {
		if AreDuplicates(e, item) {
			return true
		}
	}
	return false
}

// Merge appends incoming to existing and removes duplicates from the
// combined result. First-seen items keep their position.
func Merge(existing, incoming []feed.Item) []feed.Item {
	combined := make([]feed.Item, 0, len(existing)+len(incoming))
	combined = append(combined, existing...)
	combined = append(combined, incoming...)
	return RemoveDuplicates(combined)
}
