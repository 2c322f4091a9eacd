// Package coord orchestrates upstream fetches for Medley.
//
// The coordinator is the only component that talks to the source adapters.
// It owns the load-more throttle, the per-source rate-limit cooldowns, and
// the optimistic pagination cursor policy; the feed store only ever sees
// normalized batches.
package coord

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mholloway/medley/internal/feed"
	"github.com/mholloway/medley/internal/feedstore"
	"github.com/mholloway/medley/internal/logging"
	"github.com/mholloway/medley/internal/sources"
	"github.com/mholloway/medley/internal/trending"
	"github.com/mholloway/medley/internal/ui"
)

// loadMoreCooldown is the minimum gap between load-more rounds, regardless
// of how often the scroll trigger fires.
const loadMoreCooldown = 2500 * time.Millisecond

// rateLimitCooldown is how long a source sits out after the upstream
// answers with a rate-limit response.
const rateLimitCooldown = time.Hour

// fetchTimeout bounds each individual upstream request.
const fetchTimeout = 30 * time.Second

// refreshCadence is how many load-more rounds pass between music/social
// refreshes. Those sources are not paginated upstream, so they are
// re-sampled rather than paged.
const refreshCadence = 3

// ErrCooldown is returned when LoadMore is called inside the cooldown
// window.
var ErrCooldown = errors.New("load-more cooldown active")

// Coordinator manages fetching across the four content sources.
type Coordinator struct {
	store    *feedstore.Store
	adapters map[feed.Type]sources.Adapter
	limiter  *rate.Limiter

	mu            sync.Mutex
	cooldownUntil map[feed.Type]time.Time
	loadRounds    int

	now func() time.Time
}

// New creates a Coordinator over the given store and adapters.
func New(store *feedstore.Store, adapters []sources.Adapter) *Coordinator {
	byType := make(map[feed.Type]sources.Adapter, len(adapters))
	for _, a := range adapters {
		byType[a.Type()] = a
	}
	return &Coordinator{
		store:         store,
		adapters:      byType,
		limiter:       rate.NewLimiter(rate.Every(loadMoreCooldown), 1),
		cooldownUntil: make(map[feed.Type]time.Time),
		now:           time.Now,
	}
}

// LoadInitial fetches page 1 of every source in parallel. Skipped when the
// store already has data or a saved custom order - a restored session keeps
// what the user arranged instead of refetching over it.
//
// Sends ui.InitialLoadDone to program when non-nil.
func (c *Coordinator) LoadInitial(ctx context.Context, program *tea.Program) {
	if c.store.HasInitialData() || c.store.HasCustomOrder() {
		logging.Debug("skipping initial load", "hasInitialData", c.store.HasInitialData())
		send(program, ui.InitialLoadDone{})
		return
	}

	c.store.SetLoading(true)
	err := c.fanOut(ctx, program, feed.Types, func(feed.Type) int { return 1 })
	c.store.SetLoading(false)
	send(program, ui.InitialLoadDone{Err: err})
}

// LoadMore fetches the next page of every paginated source with more
// results. Calls inside the cooldown window return ErrCooldown without
// touching any state. Music and social are refreshed every few rounds
// rather than paged.
func (c *Coordinator) LoadMore(ctx context.Context, program *tea.Program) error {
	if c.store.Loading() {
		return ErrCooldown
	}
	if !c.limiter.Allow() {
		send(program, ui.LoadMoreDone{Rejected: true})
		return ErrCooldown
	}

	c.mu.Lock()
	c.loadRounds++
	round := c.loadRounds
	c.mu.Unlock()

	var types []feed.Type
	pages := make(map[feed.Type]int)

	for _, t := range []feed.Type{feed.TypeNews, feed.TypeMovie} {
		p := c.store.Page(t)
		if !p.HasMore || c.coolingDown(t) {
			continue
		}
		// Cursor advances at issuance, not completion. A failed fetch skips
		// its page; see advance in the feedstore.
		c.store.IncrementPage(t)
		types = append(types, t)
		pages[t] = p.CurrentPage + 1
	}

	if round%refreshCadence == 0 {
		for _, t := range []feed.Type{feed.TypeMusic, feed.TypeSocial} {
			if c.coolingDown(t) {
				continue
			}
			types = append(types, t)
			pages[t] = 1
		}
	}

	if len(types) == 0 {
		send(program, ui.LoadMoreDone{})
		return nil
	}

	c.store.SetLoading(true)
	err := c.fanOut(ctx, program, types, func(t feed.Type) int { return pages[t] })
	c.store.SetLoading(false)
	send(program, ui.LoadMoreDone{Err: err})
	return nil
}

// EnsureTrending lazily loads the trending collection. Idempotent: a no-op
// when trending is already loaded or loading.
func (c *Coordinator) EnsureTrending(ctx context.Context, program *tea.Program) {
	if !c.store.BeginTrendingLoad() {
		return
	}

	var (
		mu      sync.Mutex
		batches [][]feed.Item
	)

	var g errgroup.Group
	for _, adapter := range c.adapters {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
			defer cancel()

			batch, err := adapter.FetchTrending(fetchCtx)
			if err != nil {
				logging.Warn("trending fetch failed", "source", adapter.Name(), "error", err)
				c.noteRateLimit(adapter.Type(), err)
				return err
			}
			mu.Lock()
			batches = append(batches, batch)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	if len(batches) == 0 && err != nil {
		c.store.SetTrendingError(err.Error())
		send(program, ui.TrendingLoaded{Err: err})
		return
	}

	selected := trending.Select(c.now(), batches...)
	c.store.SetTrending(selected)
	send(program, ui.TrendingLoaded{Count: len(selected)})
}

// fanOut fetches the given types in parallel and merges each batch as it
// resolves. Batches land independently - there is no cross-source
// atomicity, and arrival order decides sequence position.
func (c *Coordinator) fanOut(ctx context.Context, program *tea.Program, types []feed.Type, pageFor func(feed.Type) int) error {
	var g errgroup.Group
	g.SetLimit(len(feed.Types))

	for _, t := range types {
		adapter, ok := c.adapters[t]
		if !ok {
			continue
		}
		page := pageFor(t)
		g.Go(func() error {
			c.fetchInto(ctx, adapter, page, program)
			return nil // errors surface via store.SetError, never fail the group
		})
	}
	_ = g.Wait()

	if msg := c.store.Err(); msg != "" {
		return errors.New(msg)
	}
	return nil
}

// fetchInto performs a single page fetch and merges the result.
func (c *Coordinator) fetchInto(ctx context.Context, adapter sources.Adapter, page int, program *tea.Program) {
	t := adapter.Type()

	if c.coolingDown(t) {
		// Cooled-down sources yield an empty batch, not an error.
		send(program, ui.BatchMerged{Type: t, Page: page})
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	c.store.MarkLoading(t, true)
	batch, err := adapter.Fetch(fetchCtx, page)
	c.store.MarkLoading(t, false)

	if err != nil {
		logging.Warn("fetch failed", "source", adapter.Name(), "page", page, "error", err)
		c.noteRateLimit(t, err)
		c.store.SetError(err.Error())
		send(program, ui.BatchMerged{Type: t, Page: page, Err: err})
		return
	}

	if len(batch) == 0 {
		// Empty page is the upstream end-of-results signal.
		c.store.SetHasMore(t, false)
	}

	added := c.store.MergeBatch(t, batch)
	logging.Debug("batch merged", "source", adapter.Name(), "page", page, "fetched", len(batch), "added", added)
	send(program, ui.BatchMerged{Type: t, Page: page, NewItems: added})
}

// coolingDown reports whether a source is inside its rate-limit cooldown.
func (c *Coordinator) coolingDown(t feed.Type) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.cooldownUntil[t])
}

// noteRateLimit starts the per-source cooldown when err is a rate-limit
// signal.
func (c *Coordinator) noteRateLimit(t feed.Type, err error) {
	if !errors.Is(err, sources.ErrRateLimited) {
		return
	}
	c.mu.Lock()
	c.cooldownUntil[t] = c.now().Add(rateLimitCooldown)
	c.mu.Unlock()
	logging.Info("source cooling down after rate limit", "type", t)
}

// send delivers a message to the program, tolerating nil (tests).
func send(program *tea.Program, msg tea.Msg) {
	if program != nil {
		program.Send(msg)
	}
}
