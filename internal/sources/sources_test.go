package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mholloway/medley/internal/feed"
)

func rssDocument(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `
    <item>
      <title>Article %d</title>
      <link>http://example.com/article%d</link>
      <guid>guid-%d</guid>
      <description>Body of article %d</description>
      <pubDate>Mon, 01 Jan 2024 12:00:00 GMT</pubDate>
    </item>`, i, i, i, i)
	}
	b.WriteString(`
  </channel>
</rss>`)
	return b.String()
}

func TestNewsAdapterFetchNormalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssDocument(3))
	}))
	defer server.Close()

	adapter := NewNews("Test Wire", server.URL, "technology", 5*time.Second)
	items, err := adapter.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	first := items[0]
	if first.Type != feed.TypeNews {
		t.Errorf("expected news type, got %s", first.Type)
	}
	if first.Source != "Test Wire" {
		t.Errorf("unexpected source: %s", first.Source)
	}
	if first.URL != "http://example.com/article0" {
		t.Errorf("unexpected URL: %s", first.URL)
	}
	if first.ID == "" || !first.Valid() {
		t.Error("expected a valid normalized item")
	}
}

func TestNewsAdapterDeterministicIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssDocument(2))
	}))
	defer server.Close()

	adapter := NewNews("Test Wire", server.URL, "technology", 5*time.Second)
	first, err := adapter.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	second, err := adapter.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}

	if first[0].ID != second[0].ID {
		t.Errorf("re-fetch changed the ID: %q vs %q", first[0].ID, second[0].ID)
	}
}

func TestNewsAdapterPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssDocument(PageSize+5))
	}))
	defer server.Close()

	adapter := NewNews("Test Wire", server.URL, "technology", 5*time.Second)

	page1, err := adapter.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("page 1 failed: %v", err)
	}
	if len(page1) != PageSize {
		t.Errorf("expected full page of %d, got %d", PageSize, len(page1))
	}

	page2, err := adapter.Fetch(context.Background(), 2)
	if err != nil {
		t.Fatalf("page 2 failed: %v", err)
	}
	if len(page2) != 5 {
		t.Errorf("expected 5 remaining items, got %d", len(page2))
	}

	page3, err := adapter.Fetch(context.Background(), 3)
	if err != nil {
		t.Fatalf("page 3 failed: %v", err)
	}
	if len(page3) != 0 {
		t.Errorf("expected exhausted source to return empty batch, got %d", len(page3))
	}
}

func TestNewsAdapterRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	adapter := NewNews("Test Wire", server.URL, "technology", 5*time.Second)
	_, err := adapter.Fetch(context.Background(), 1)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestMovieAdapterFetchNormalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("expected page=2 query, got %q", r.URL.Query().Get("page"))
		}
		fmt.Fprint(w, `{"page":2,"total_pages":10,"results":[
			{"id":42,"title":"Dune Part Three","overview":"sand","poster_path":"/p.jpg","release_date":"2026-02-01","vote_average":8.1,"genre_name":"Sci-Fi"}
		]}`)
	}))
	defer server.Close()

	adapter := NewMovies(server.URL, "test-key", 5*time.Second)
	items, err := adapter.Fetch(context.Background(), 2)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	m := items[0]
	if m.Type != feed.TypeMovie {
		t.Errorf("expected movie type, got %s", m.Type)
	}
	if m.Rating != 8.1 {
		t.Errorf("expected rating 8.1, got %v", m.Rating)
	}
	if m.Genre != "Sci-Fi" {
		t.Errorf("unexpected genre: %s", m.Genre)
	}
	if m.PublishedAt.Format("2006-01-02") != "2026-02-01" {
		t.Errorf("unexpected release date: %v", m.PublishedAt)
	}
	if !strings.Contains(m.URL, "themoviedb.org/movie/42") {
		t.Errorf("unexpected URL: %s", m.URL)
	}
}

func TestMovieAdapterRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	adapter := NewMovies(server.URL, "test-key", 5*time.Second)
	_, err := adapter.Fetch(context.Background(), 1)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestMusicAdapterFetchNormalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tracks":[
			{"id":"t1","name":"Heat Wave","artist":"Glass Animals","album":"Dreamland","duration_ms":238000,"external_url":"https://open.spotify.com/track/t1","released_at":"2026-01-15","popularity":80}
		]}`)
	}))
	defer server.Close()

	adapter := NewMusic(server.URL, "token", 5*time.Second)
	items, err := adapter.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	tr := items[0]
	if tr.Artist != "Glass Animals" || tr.Album != "Dreamland" {
		t.Errorf("unexpected artist/album: %s / %s", tr.Artist, tr.Album)
	}
	if tr.Duration != 238 {
		t.Errorf("expected 238s duration, got %d", tr.Duration)
	}
}

func TestSocialAdapterSentinelURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"posts":[
			{"id":"p1","title":"hot take","body":"text","author":"alice","platform":"mastodon","posted_at":"2026-03-01T12:00:00Z","likes":120,"hashtags":["go"]}
		]}`)
	}))
	defer server.Close()

	adapter := NewSocial(server.URL, 5*time.Second)
	items, err := adapter.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	p := items[0]
	if p.URL != feed.NoLink {
		t.Errorf("post without permalink should carry the sentinel URL, got %q", p.URL)
	}
	if p.Author != "alice" || p.Platform != "mastodon" {
		t.Errorf("unexpected author/platform: %s / %s", p.Author, p.Platform)
	}
	if p.Likes != 120 {
		t.Errorf("expected 120 likes, got %d", p.Likes)
	}
}

func TestSocialAdapterHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewSocial(server.URL, 5*time.Second)
	_, err := adapter.Fetch(context.Background(), 1)
	if err == nil {
		t.Fatal("expected an error for HTTP 500")
	}
	if errors.Is(err, ErrRateLimited) {
		t.Error("a plain server error must not look like rate limiting")
	}
}
