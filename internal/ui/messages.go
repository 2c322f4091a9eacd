// Package ui provides the Bubble Tea TUI for Medley.
package ui

import "github.com/mholloway/medley/internal/feed"

// BatchMerged is sent when a fetched batch has been merged into the store.
type BatchMerged struct {
	Type     feed.Type
	Page     int
	NewItems int
	Err      error
}

// InitialLoadDone is sent when the first-run fan-out finishes.
type InitialLoadDone struct {
	Err error
}

// LoadMoreDone is sent when a load-more round completes (or was rejected by
// the cooldown).
type LoadMoreDone struct {
	Rejected bool
	Err      error
}

// TrendingLoaded is sent when the lazy trending load completes.
type TrendingLoaded struct {
	Count int
	Err   error
}

// RefreshTick triggers periodic UI refresh.
type RefreshTick struct{}
