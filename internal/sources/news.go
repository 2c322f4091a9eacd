package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/mholloway/medley/internal/feed"
)

// userAgent identifies Medley to upstream feed servers.
const userAgent = "Medley/1.0 (+https://github.com/mholloway/medley)"

// NewsAdapter fetches news articles from an RSS/Atom endpoint and paginates
// them locally. RSS has no server-side paging, so a page is a window into
// the parsed feed; a window past the end signals exhaustion with an empty
// batch.
type NewsAdapter struct {
	name     string
	feedURL  string
	category string
	client   *http.Client
	parser   *gofeed.Parser
}

// NewNews creates a news adapter for one RSS endpoint.
func NewNews(name, feedURL, category string, timeout time.Duration) *NewsAdapter {
	return &NewsAdapter{
		name:     name,
		feedURL:  feedURL,
		category: category,
		client:   &http.Client{Timeout: timeout},
		parser:   gofeed.NewParser(),
	}
}

func (a *NewsAdapter) Name() string    { return a.name }
func (a *NewsAdapter) Type() feed.Type { return feed.TypeNews }

// Fetch retrieves one page of articles.
func (a *NewsAdapter) Fetch(ctx context.Context, page int) ([]feed.Item, error) {
	if page < 1 {
		page = 1
	}

	parsed, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	start := (page - 1) * PageSize
	if start >= len(parsed.Items) {
		return []feed.Item{}, nil
	}
	end := start + PageSize
	if end > len(parsed.Items) {
		end = len(parsed.Items)
	}

	now := time.Now()
	items := make([]feed.Item, 0, end-start)
	for _, fi := range parsed.Items[start:end] {
		items = append(items, a.convert(fi, now))
	}
	return items, nil
}

// FetchTrending returns the first page; the trending policy filter runs
// downstream.
func (a *NewsAdapter) FetchTrending(ctx context.Context) ([]feed.Item, error) {
	return a.Fetch(ctx, 1)
}

func (a *NewsAdapter) load(ctx context.Context) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%s: %w", a.name, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	parsed, err := a.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return parsed, nil
}

func (a *NewsAdapter) convert(fi *gofeed.Item, fetchTime time.Time) feed.Item {
	published := fetchTime
	if fi.PublishedParsed != nil {
		published = *fi.PublishedParsed
	} else if fi.UpdatedParsed != nil {
		published = *fi.UpdatedParsed
	}

	url := fi.Link
	if url == "" {
		url = feed.NoLink
	}

	id := feed.ContentID("news", fi.GUID)
	if fi.GUID == "" {
		id = feed.ContentID("news", fi.Link+fi.Title)
	}

	description := fi.Description
	image := ""
	if fi.Image != nil {
		image = fi.Image.URL
	}

	return feed.Item{
		ID:          id,
		Title:       fi.Title,
		Description: description,
		ImageURL:    image,
		Source:      a.name,
		Category:    a.category,
		PublishedAt: published,
		URL:         url,
		Type:        feed.TypeNews,
		ReadTime:    estimateReadTime(description),
	}
}

// estimateReadTime approximates reading minutes from description length.
func estimateReadTime(description string) int {
	if description == "" {
		return 0
	}
	minutes := (len(strings.TrimSpace(description)) + 199) / 200
	return minutes
}
