package coord

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/mholloway/medley/internal/feed"
	"github.com/mholloway/medley/internal/feedstore"
	"github.com/mholloway/medley/internal/sources"
)

// stubAdapter serves canned pages and records what was asked of it.
type stubAdapter struct {
	typ      feed.Type
	pages    map[int][]feed.Item
	trending []feed.Item
	err      error

	fetched       []int
	trendingCalls int
}

func (s *stubAdapter) Name() string    { return "stub-" + string(s.typ) }
func (s *stubAdapter) Type() feed.Type { return s.typ }

func (s *stubAdapter) Fetch(_ context.Context, page int) ([]feed.Item, error) {
	s.fetched = append(s.fetched, page)
	if s.err != nil {
		return nil, s.err
	}
	return s.pages[page], nil
}

func (s *stubAdapter) FetchTrending(context.Context) ([]feed.Item, error) {
	s.trendingCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.trending, nil
}

func makeItems(t feed.Type, prefix string, n int) []feed.Item {
	items := make([]feed.Item, n)
	for i := range items {
		items[i] = feed.Item{
			ID:          fmt.Sprintf("%s-%d", prefix, i),
			Title:       fmt.Sprintf("%s item %d", prefix, i),
			Type:        t,
			URL:         fmt.Sprintf("https://example.com/%s/%d", prefix, i),
			PublishedAt: time.Now().Add(-time.Duration(i) * time.Minute),
		}
	}
	return items
}

func newTestCoordinator(adapters ...sources.Adapter) (*Coordinator, *feedstore.Store) {
	store := feedstore.New()
	c := New(store, adapters)
	return c, store
}

func TestLoadInitialFetchesPageOne(t *testing.T) {
	news := &stubAdapter{typ: feed.TypeNews, pages: map[int][]feed.Item{1: makeItems(feed.TypeNews, "n", 3)}}
	music := &stubAdapter{typ: feed.TypeMusic, pages: map[int][]feed.Item{1: makeItems(feed.TypeMusic, "m", 2)}}
	c, store := newTestCoordinator(news, music)

	c.LoadInitial(context.Background(), nil)

	if got := store.ItemCount(); got != 5 {
		t.Errorf("item count = %d, want 5", got)
	}
	if !store.HasInitialData() {
		t.Error("expected hasInitialData after initial load")
	}
	if len(news.fetched) != 1 || news.fetched[0] != 1 {
		t.Errorf("news fetched pages = %v, want [1]", news.fetched)
	}
}

func TestLoadInitialSkipsWithCustomOrder(t *testing.T) {
	news := &stubAdapter{typ: feed.TypeNews, pages: map[int][]feed.Item{1: makeItems(feed.TypeNews, "n", 3)}}
	c, store := newTestCoordinator(news)

	store.MergeBatch(feed.TypeNews, makeItems(feed.TypeNews, "saved", 2))
	store.SaveChanges()

	c.LoadInitial(context.Background(), nil)

	if len(news.fetched) != 0 {
		t.Errorf("fetched pages = %v, want none when a custom order exists", news.fetched)
	}
}

func TestLoadMoreCooldownRejectsRapidCalls(t *testing.T) {
	news := &stubAdapter{typ: feed.TypeNews, pages: map[int][]feed.Item{2: makeItems(feed.TypeNews, "n2", 3)}}
	c, _ := newTestCoordinator(news)

	if err := c.LoadMore(context.Background(), nil); err != nil {
		t.Fatalf("first LoadMore: %v", err)
	}
	if err := c.LoadMore(context.Background(), nil); !errors.Is(err, ErrCooldown) {
		t.Errorf("second LoadMore = %v, want ErrCooldown", err)
	}
}

func TestLoadMorePagesNewsAndMovies(t *testing.T) {
	news := &stubAdapter{typ: feed.TypeNews, pages: map[int][]feed.Item{2: makeItems(feed.TypeNews, "n2", 3)}}
	movies := &stubAdapter{typ: feed.TypeMovie, pages: map[int][]feed.Item{2: makeItems(feed.TypeMovie, "mv2", 2)}}
	music := &stubAdapter{typ: feed.TypeMusic, pages: map[int][]feed.Item{1: makeItems(feed.TypeMusic, "m", 2)}}
	c, store := newTestCoordinator(news, movies, music)

	if err := c.LoadMore(context.Background(), nil); err != nil {
		t.Fatalf("LoadMore: %v", err)
	}

	if got := store.Page(feed.TypeNews).CurrentPage; got != 2 {
		t.Errorf("news page = %d, want 2", got)
	}
	if len(news.fetched) != 1 || news.fetched[0] != 2 {
		t.Errorf("news fetched pages = %v, want [2]", news.fetched)
	}
	if len(music.fetched) != 0 {
		t.Errorf("music fetched on round 1: %v", music.fetched)
	}
}

func TestLoadMoreRefreshesMusicOnCadence(t *testing.T) {
	music := &stubAdapter{typ: feed.TypeMusic, pages: map[int][]feed.Item{1: makeItems(feed.TypeMusic, "m", 2)}}
	social := &stubAdapter{typ: feed.TypeSocial, pages: map[int][]feed.Item{1: makeItems(feed.TypeSocial, "s", 2)}}
	c, store := newTestCoordinator(music, social)

	store.SetHasMore(feed.TypeNews, false)
	store.SetHasMore(feed.TypeMovie, false)
	c.limiter = newUnlimitedLimiter()

	for round := 1; round <= refreshCadence; round++ {
		if err := c.LoadMore(context.Background(), nil); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
	}

	if len(music.fetched) == 0 {
		t.Error("music never refreshed across a full cadence cycle")
	}
	if len(social.fetched) == 0 {
		t.Error("social never refreshed across a full cadence cycle")
	}
}

func TestLoadMoreAdvancesCursorEvenOnFailure(t *testing.T) {
	news := &stubAdapter{typ: feed.TypeNews, err: errors.New("upstream down")}
	c, store := newTestCoordinator(news)

	_ = c.LoadMore(context.Background(), nil)

	if got := store.Page(feed.TypeNews).CurrentPage; got != 2 {
		t.Errorf("news page after failed fetch = %d, want 2", got)
	}
	if store.Err() == "" {
		t.Error("expected store error after failed fetch")
	}
}

func TestRateLimitStartsCooldown(t *testing.T) {
	news := &stubAdapter{typ: feed.TypeNews, err: fmt.Errorf("fetch: %w", sources.ErrRateLimited)}
	c, _ := newTestCoordinator(news)

	base := time.Now()
	c.now = func() time.Time { return base }

	_ = c.LoadMore(context.Background(), nil)

	if !c.coolingDown(feed.TypeNews) {
		t.Fatal("expected news to be cooling down after rate limit")
	}

	// Inside the window the source yields empty batches without a fetch.
	news.err = nil
	news.fetched = nil
	c.now = func() time.Time { return base.Add(30 * time.Minute) }
	c.limiter = newUnlimitedLimiter()

	_ = c.LoadMore(context.Background(), nil)
	if len(news.fetched) != 0 {
		t.Errorf("fetched during cooldown: %v", news.fetched)
	}

	// After an hour the source participates again.
	c.now = func() time.Time { return base.Add(rateLimitCooldown + time.Minute) }
	news.pages = map[int][]feed.Item{4: makeItems(feed.TypeNews, "n4", 2)}

	_ = c.LoadMore(context.Background(), nil)
	if len(news.fetched) == 0 {
		t.Error("expected fetch to resume after the cooldown window")
	}
}

func TestEmptyPageStopsPagination(t *testing.T) {
	news := &stubAdapter{typ: feed.TypeNews, pages: map[int][]feed.Item{}}
	c, store := newTestCoordinator(news)

	_ = c.LoadMore(context.Background(), nil)

	if store.Page(feed.TypeNews).HasMore {
		t.Error("expected hasMore=false after an empty page")
	}

	c.limiter = newUnlimitedLimiter()
	news.fetched = nil
	_ = c.LoadMore(context.Background(), nil)
	if len(news.fetched) != 0 {
		t.Errorf("fetched an exhausted source: %v", news.fetched)
	}
}

func TestEnsureTrendingIsIdempotent(t *testing.T) {
	news := &stubAdapter{typ: feed.TypeNews, trending: makeItems(feed.TypeNews, "tr", 3)}
	c, store := newTestCoordinator(news)

	c.EnsureTrending(context.Background(), nil)
	if got := len(store.Trending()); got != 3 {
		t.Fatalf("trending count = %d, want 3", got)
	}

	news.trending = makeItems(feed.TypeNews, "tr2", 5)
	c.EnsureTrending(context.Background(), nil)
	if got := len(store.Trending()); got != 3 {
		t.Errorf("trending count after second call = %d, want 3 (no refetch)", got)
	}
}

func TestEnsureTrendingEmptySelectionDoesNotRefetch(t *testing.T) {
	// Eligible-window misses can leave a successful load with zero items.
	stale := makeItems(feed.TypeNews, "old", 3)
	for i := range stale {
		stale[i].PublishedAt = time.Now().Add(-72 * time.Hour)
	}
	news := &stubAdapter{typ: feed.TypeNews, trending: stale}
	c, store := newTestCoordinator(news)

	c.EnsureTrending(context.Background(), nil)
	if got := len(store.Trending()); got != 0 {
		t.Fatalf("trending count = %d, want 0 for out-of-window items", got)
	}

	c.EnsureTrending(context.Background(), nil)
	if news.trendingCalls != 1 {
		t.Errorf("trending fetches = %d, want 1 (empty result is still loaded)", news.trendingCalls)
	}
}

func TestEnsureTrendingSingleClaim(t *testing.T) {
	news := &stubAdapter{typ: feed.TypeNews, trending: makeItems(feed.TypeNews, "tr", 2)}
	c, store := newTestCoordinator(news)

	// The claim is taken atomically, so a second trigger arriving before
	// the first fetch resolves must not start another one.
	if !store.BeginTrendingLoad() {
		t.Fatal("first claim should succeed")
	}
	c.EnsureTrending(context.Background(), nil)

	if news.trendingCalls != 0 {
		t.Errorf("trending fetches = %d, want 0 while a load is in flight", news.trendingCalls)
	}
}

func TestEnsureTrendingErrorOnlyWhenAllFail(t *testing.T) {
	news := &stubAdapter{typ: feed.TypeNews, err: errors.New("down")}
	music := &stubAdapter{typ: feed.TypeMusic, trending: makeItems(feed.TypeMusic, "mt", 2)}
	c, store := newTestCoordinator(news, music)

	c.EnsureTrending(context.Background(), nil)

	if store.TrendingErr() != "" {
		t.Errorf("trending error = %q, want none when one source succeeds", store.TrendingErr())
	}
	if got := len(store.Trending()); got != 2 {
		t.Errorf("trending count = %d, want 2", got)
	}
}

func TestEnsureTrendingAllFailedSetsError(t *testing.T) {
	news := &stubAdapter{typ: feed.TypeNews, err: errors.New("down")}
	c, store := newTestCoordinator(news)

	c.EnsureTrending(context.Background(), nil)

	if store.TrendingErr() == "" {
		t.Error("expected trending error when every source fails")
	}
}

func newUnlimitedLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}
