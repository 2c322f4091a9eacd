// Package feed defines the normalized content model for Medley.
//
// Every upstream provider (news, movies, music, social) is converted into the
// unified Item type before it reaches the feed store. Adapters own the
// conversion; everything downstream is source-agnostic.
package feed

import "time"

// Type identifies the kind of content an item carries.
type Type string

const (
	TypeNews   Type = "news"
	TypeMovie  Type = "movie"
	TypeMusic  Type = "music"
	TypeSocial Type = "social"
)

// Types lists all content types in canonical order.
var Types = []Type{TypeNews, TypeMovie, TypeMusic, TypeSocial}

// Valid reports whether t is one of the four known content types.
func (t Type) Valid() bool {
	switch t {
	case TypeNews, TypeMovie, TypeMusic, TypeSocial:
		return true
	}
	return false
}

// NoLink is the URL sentinel meaning "no canonical link". Items carrying it
// cannot be deduplicated by URL.
const NoLink = "#"

// Item is a single piece of content from any source.
// This is the unified type that flows through the feed.
type Item struct {
	ID          string
	Title       string
	Description string
	ImageURL    string
	Source      string // provider display name, e.g. "BBC News", "TMDB"
	Category    string
	PublishedAt time.Time
	URL         string // canonical link, NoLink when absent
	Type        Type

	// Type-specific attributes. Zero values mean "not applicable".
	ReadTime int     // news: estimated minutes
	Rating   float64 // movie
	Genre    string  // movie
	Artist   string  // music
	Album    string  // music
	Duration int     // music: seconds
	Author   string  // social
	Platform string  // social
	Likes    int     // social
	Hashtags []string
}

// Valid reports whether the item is well-formed enough to enter the feed.
// Malformed items are dropped during merge rather than failing the batch.
func (it Item) Valid() bool {
	return it.ID != "" && it.Title != "" && it.Type.Valid()
}

// HasLink reports whether the item carries a usable canonical URL.
func (it Item) HasLink() bool {
	return it.URL != "" && it.URL != NoLink
}
