// Package search derives filtered, sorted projections of the feed. All
// functions are pure: []Item in, []Item out. Nothing here mutates the store.
package search

import (
	"sort"
	"strings"

	"github.com/mholloway/medley/internal/feed"
)

// SortBy selects the result ordering.
type SortBy string

const (
	SortByDate      SortBy = "date"
	SortByTitle     SortBy = "title"
	SortByRelevance SortBy = "relevance"
)

// Filters constrain and order search results.
type Filters struct {
	Type   feed.Type // zero value means all types
	SortBy SortBy    // defaults to relevance
}

// Search returns items matching the query, constrained by filters.
//
// Matching is a case-insensitive substring test over title, description,
// source, author, and artist. An empty or whitespace-only query returns an
// empty result set - "no search active" is not the same as "match all".
func Search(query string, items []feed.Item, filters Filters) []feed.Item {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return []feed.Item{}
	}

	matched := make([]feed.Item, 0, len(items))
	for _, item := range items {
		if filters.Type != "" && item.Type != filters.Type {
			continue
		}
		if matches(item, term) {
			matched = append(matched, item)
		}
	}

	switch filters.SortBy {
	case SortByDate:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].PublishedAt.After(matched[j].PublishedAt)
		})
	case SortByTitle:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].Title < matched[j].Title
		})
	default:
		// Relevance: title matches rank above matches on other fields,
		// stable within each tier.
		sort.SliceStable(matched, func(i, j int) bool {
			return titleMatches(matched[i], term) && !titleMatches(matched[j], term)
		})
	}

	return matched
}

func matches(item feed.Item, term string) bool {
	return strings.Contains(strings.ToLower(item.Title), term) ||
		strings.Contains(strings.ToLower(item.Description), term) ||
		strings.Contains(strings.ToLower(item.Source), term) ||
		(item.Author != "" && strings.Contains(strings.ToLower(item.Author), term)) ||
		(item.Artist != "" && strings.Contains(strings.ToLower(item.Artist), term))
}

func titleMatches(item feed.Item, term string) bool {
	return strings.Contains(strings.ToLower(item.Title), term)
}

// ByType keeps only items of the given content type.
func ByType(items []feed.Item, t feed.Type) []feed.Item {
	if len(items) == 0 {
		return []feed.Item{}
	}
	result := make([]feed.Item, 0, len(items))
	for _, item := range items {
		if item.Type == t {
			result = append(result, item)
		}
	}
	return result
}
