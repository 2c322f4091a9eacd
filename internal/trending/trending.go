// Package trending selects which items qualify for the trending section.
//
// Thresholds are policy constants, not structure: each content type gets a
// recency window plus a popularity floor, and the combined multi-type result
// is deduplicated before exposure.
package trending

import (
	"sort"
	"time"

	"github.com/mholloway/medley/internal/dedup"
	"github.com/mholloway/medley/internal/feed"
)

// Recency windows per content type.
const (
	newsWindow   = 24 * time.Hour
	movieWindow  = 30 * 24 * time.Hour
	musicWindow  = 7 * 24 * time.Hour
	socialWindow = 24 * time.Hour
)

// Popularity floors.
const (
	minMovieRating = 6.5
	minSocialLikes = 50
)

// MaxItems caps the exposed trending collection.
const MaxItems = 12

// Eligible reports whether an item qualifies for trending at the given time.
func Eligible(item feed.Item, now time.Time) bool {
	age := now.Sub(item.PublishedAt)

	switch item.Type {
	case feed.TypeNews:
		return age >= 0 && age <= newsWindow
	case feed.TypeMovie:
		return age >= 0 && age <= movieWindow && item.Rating >= minMovieRating
	case feed.TypeMusic:
		return age >= 0 && age <= musicWindow
	case feed.TypeSocial:
		return age >= 0 && age <= socialWindow && item.Likes >= minSocialLikes
	}
	return false
}

// Select merges per-type trending batches into one collection: policy
// filter, dedup across the combined result, newest first, capped at
// MaxItems.
func Select(now time.Time, batches ...[]feed.Item) []feed.Item {
	var combined []feed.Item
	for _, batch := range batches {
		for _, item := range batch {
			if item.Valid() && Eligible(item, now) {
				combined = append(combined, item)
			}
		}
	}

	combined = dedup.RemoveDuplicates(combined)

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].PublishedAt.After(combined[j].PublishedAt)
	})

	if len(combined) > MaxItems {
		combined = combined[:MaxItems]
	}
	return combined
}
