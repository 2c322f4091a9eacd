// Package sources provides the upstream content adapters for Medley.
//
// Each adapter retrieves one content type (news, movies, music, social) and
// converts the provider's wire format into normalized feed.Item values. The
// feed store never sees transport details - only the normalized batches,
// plus a distinguishable rate-limit signal that the coordinator translates
// into a per-source cooldown.
package sources

import (
	"context"
	"errors"

	"github.com/mholloway/medley/internal/feed"
)

// ErrRateLimited is returned when the upstream provider answered with a
// rate-limit response. Check with errors.Is.
var ErrRateLimited = errors.New("upstream rate limited")

// PageSize is how many items a single page request yields.
const PageSize = 20

// Adapter is the interface all content sources implement.
type Adapter interface {
	// Name returns the human-readable provider name.
	Name() string

	// Type returns the content type this adapter produces.
	Type() feed.Type

	// Fetch retrieves the given 1-based page of normalized items. An empty
	// result with a nil error means the source is exhausted.
	Fetch(ctx context.Context, page int) ([]feed.Item, error)

	// FetchTrending retrieves the provider's trending selection. Inclusion
	// rules differ from the main feed; recency/popularity filtering happens
	// downstream in the trending package.
	FetchTrending(ctx context.Context) ([]feed.Item, error)
}
