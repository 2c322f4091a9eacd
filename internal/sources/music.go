package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mholloway/medley/internal/feed"
)

// MusicAdapter fetches tracks from a Spotify-shaped JSON API.
type MusicAdapter struct {
	name    string
	baseURL string
	token   string
	client  *http.Client
}

type musicResponse struct {
	Tracks []rawTrack `json:"tracks"`
}

type rawTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	DurationMS int    `json:"duration_ms"`
	ImageURL   string `json:"image_url"`
	ExternalURL string `json:"external_url"`
	ReleasedAt string `json:"released_at"`
	Popularity int    `json:"popularity"`
}

// NewMusic creates a music adapter against the given API base URL.
func NewMusic(baseURL, token string, timeout time.Duration) *MusicAdapter {
	return &MusicAdapter{
		name:    "Spotify",
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *MusicAdapter) Name() string    { return a.name }
func (a *MusicAdapter) Type() feed.Type { return feed.TypeMusic }

// Fetch retrieves one page of new releases.
func (a *MusicAdapter) Fetch(ctx context.Context, page int) ([]feed.Item, error) {
	return a.fetchPath(ctx, "/new-releases", page)
}

// FetchTrending retrieves the provider's top tracks.
func (a *MusicAdapter) FetchTrending(ctx context.Context) ([]feed.Item, error) {
	return a.fetchPath(ctx, "/top-tracks", 1)
}

func (a *MusicAdapter) fetchPath(ctx context.Context, path string, page int) ([]feed.Item, error) {
	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("offset", strconv.Itoa((page-1)*PageSize))
	q.Set("limit", strconv.Itoa(PageSize))
	endpoint := a.baseURL + path + "?" + q.Encode()

	body, err := getJSON(ctx, a.client, endpoint, a.name)
	if err != nil {
		return nil, err
	}

	var resp musicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode music response: %w", err)
	}

	items := make([]feed.Item, 0, len(resp.Tracks))
	for _, tr := range resp.Tracks {
		items = append(items, a.convert(tr))
	}
	return items, nil
}

func (a *MusicAdapter) convert(tr rawTrack) feed.Item {
	released, _ := time.Parse("2006-01-02", tr.ReleasedAt)

	link := tr.ExternalURL
	if link == "" {
		link = feed.NoLink
	}

	return feed.Item{
		ID:          feed.ContentID("music", tr.ID),
		Title:       tr.Name,
		Description: fmt.Sprintf("%s - %s", tr.Artist, tr.Album),
		ImageURL:    tr.ImageURL,
		Source:      a.name,
		Category:    "music",
		PublishedAt: released,
		URL:         link,
		Type:        feed.TypeMusic,
		Artist:      tr.Artist,
		Album:       tr.Album,
		Duration:    tr.DurationMS / 1000,
	}
}
