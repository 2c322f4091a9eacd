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

// SocialAdapter fetches posts from a social aggregation JSON API.
type SocialAdapter struct {
	name    string
	baseURL string
	client  *http.Client
}

type socialResponse struct {
	Posts []rawPost `json:"posts"`
}

type rawPost struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Author    string   `json:"author"`
	Platform  string   `json:"platform"`
	Permalink string   `json:"permalink"`
	ImageURL  string   `json:"image_url"`
	PostedAt  string   `json:"posted_at"`
	Likes     int      `json:"likes"`
	Hashtags  []string `json:"hashtags"`
}

// NewSocial creates a social adapter against the given API base URL.
func NewSocial(baseURL string, timeout time.Duration) *SocialAdapter {
	return &SocialAdapter{
		name:    "Social",
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *SocialAdapter) Name() string    { return a.name }
func (a *SocialAdapter) Type() feed.Type { return feed.TypeSocial }

// Fetch retrieves one page of recent posts.
func (a *SocialAdapter) Fetch(ctx context.Context, page int) ([]feed.Item, error) {
	return a.fetchPath(ctx, "/posts", page)
}

// FetchTrending retrieves posts sorted by engagement.
func (a *SocialAdapter) FetchTrending(ctx context.Context) ([]feed.Item, error) {
	return a.fetchPath(ctx, "/posts/hot", 1)
}

func (a *SocialAdapter) fetchPath(ctx context.Context, path string, page int) ([]feed.Item, error) {
	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(PageSize))
	endpoint := a.baseURL + path + "?" + q.Encode()

	body, err := getJSON(ctx, a.client, endpoint, a.name)
	if err != nil {
		return nil, err
	}

	var resp socialResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode social response: %w", err)
	}

	items := make([]feed.Item, 0, len(resp.Posts))
	for _, p := range resp.Posts {
		items = append(items, a.convert(p))
	}
	return items, nil
}

func (a *SocialAdapter) convert(p rawPost) feed.Item {
	posted, err := time.Parse(time.RFC3339, p.PostedAt)
	if err != nil {
		posted = time.Time{}
	}

	link := p.Permalink
	if link == "" {
		// Social posts frequently have no canonical link; the sentinel keeps
		// them out of URL-based deduplication.
		link = feed.NoLink
	}

	return feed.Item{
		ID:          feed.ContentID("social", p.Platform+":"+p.ID),
		Title:       p.Title,
		Description: p.Body,
		ImageURL:    p.ImageURL,
		Source:      a.name,
		Category:    "social",
		PublishedAt: posted,
		URL:         link,
		Type:        feed.TypeSocial,
		Author:      p.Author,
		Platform:    p.Platform,
		Likes:       p.Likes,
		Hashtags:    p.Hashtags,
	}
}
