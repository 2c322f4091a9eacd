package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mholloway/medley/internal/feed"
)

// MovieAdapter fetches movies from a TMDB-shaped JSON API.
type MovieAdapter struct {
	name     string
	baseURL  string
	apiKey   string
	client   *http.Client
}

// movieResponse mirrors the TMDB discover/popular envelope.
type movieResponse struct {
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	Results    []rawMovie  `json:"results"`
}

type rawMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	GenreName   string  `json:"genre_name"`
}

// NewMovies creates a movie adapter against the given API base URL.
func NewMovies(baseURL, apiKey string, timeout time.Duration) *MovieAdapter {
	return &MovieAdapter{
		name:    "TMDB",
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *MovieAdapter) Name() string    { return a.name }
func (a *MovieAdapter) Type() feed.Type { return feed.TypeMovie }

// Fetch retrieves one page of popular movies.
func (a *MovieAdapter) Fetch(ctx context.Context, page int) ([]feed.Item, error) {
	return a.fetchPath(ctx, "/movie/popular", page)
}

// FetchTrending retrieves the provider's trending page.
func (a *MovieAdapter) FetchTrending(ctx context.Context) ([]feed.Item, error) {
	return a.fetchPath(ctx, "/trending/movie/week", 1)
}

func (a *MovieAdapter) fetchPath(ctx context.Context, path string, page int) ([]feed.Item, error) {
	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("api_key", a.apiKey)
	q.Set("page", strconv.Itoa(page))
	endpoint := a.baseURL + path + "?" + q.Encode()

	body, err := getJSON(ctx, a.client, endpoint, a.name)
	if err != nil {
		return nil, err
	}

	var resp movieResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode movie response: %w", err)
	}

	items := make([]feed.Item, 0, len(resp.Results))
	for _, m := range resp.Results {
		items = append(items, a.convert(m))
	}
	return items, nil
}

func (a *MovieAdapter) convert(m rawMovie) feed.Item {
	released, _ := time.Parse("2006-01-02", m.ReleaseDate)

	link := feed.NoLink
	if m.ID != 0 {
		link = fmt.Sprintf("https://www.themoviedb.org/movie/%d", m.ID)
	}

	image := ""
	if m.PosterPath != "" {
		image = "https://image.tmdb.org/t/p/w500" + m.PosterPath
	}

	genre := m.GenreName
	if genre == "" {
		genre = "Unknown"
	}

	return feed.Item{
		ID:          feed.ContentID("movie", strconv.FormatInt(m.ID, 10)),
		Title:       m.Title,
		Description: m.Overview,
		ImageURL:    image,
		Source:      a.name,
		Category:    "movies",
		PublishedAt: released,
		URL:         link,
		Type:        feed.TypeMovie,
		Rating:      m.VoteAverage,
		Genre:       genre,
	}
}

// getJSON performs a GET and returns the response body, translating 429
// into ErrRateLimited.
func getJSON(ctx context.Context, client *http.Client, endpoint, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%s: %w", source, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
