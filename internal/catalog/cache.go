package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/gamevault/gamevault-server/internal/domain"
)

// refreshTimeout bounds one fan-out. Refreshes outlive the request that triggered them.
const refreshTimeout = 45 * time.Second

// Snapshot is a point-in-time copy of the aggregated catalog.
type Snapshot struct {
	Trending    []*domain.Game
	TopRated    []*domain.Game
	NewReleases []*domain.Game
	Featured    *domain.Game
	HorrorGames []*domain.Game
	LastUpdated time.Time
}

// Populated reports whether a refresh has ever completed.
func (s Snapshot) Populated() bool {
	return !s.LastUpdated.IsZero()
}

// All returns every cached record once, keyed by id. When an id appears in more
// than one slot the last occurrence wins while the first-seen position is kept.
func (s Snapshot) All() []*domain.Game {
	var union []*domain.Game
	union = append(union, s.Trending...)
	union = append(union, s.TopRated...)
	union = append(union, s.NewReleases...)
	if s.Featured != nil {
		union = append(union, s.Featured)
	}
	union = append(union, s.HorrorGames...)

	position := make(map[string]int, len(union))
	out := make([]*domain.Game, 0, len(union))
	for _, g := range union {
		if i, ok := position[g.ID]; ok {
			out[i] = g
			continue
		}
		position[g.ID] = len(out)
		out = append(out, g)
	}
	return out
}

// Counts summarizes slot sizes for logs and events.
func (s Snapshot) Counts() map[string]int {
	featured := 0
	if s.Featured != nil {
		featured = 1
	}
	return map[string]int{
		"trending":    len(s.Trending),
		"topRated":    len(s.TopRated),
		"newReleases": len(s.NewReleases),
		"featured":    featured,
		"horrorGames": len(s.HorrorGames),
	}
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Trending:    cloneGames(s.Trending),
		TopRated:    cloneGames(s.TopRated),
		NewReleases: cloneGames(s.NewReleases),
		Featured:    s.Featured.Clone(),
		HorrorGames: cloneGames(s.HorrorGames),
		LastUpdated: s.LastUpdated,
	}
}

func cloneGames(in []*domain.Game) []*domain.Game {
	if in == nil {
		return nil
	}
	out := make([]*domain.Game, len(in))
	for i, g := range in {
		out[i] = g.Clone()
	}
	return out
}

// RefreshHook runs after every refresh with the new snapshot.
type RefreshHook func(ctx context.Context, snap Snapshot)

// Cache holds the five aggregated category slots. RefreshIfNeeded is the only writer.
type Cache struct {
	mu   sync.RWMutex
	snap Snapshot

	fetch  *fetchers
	mocks  *MockGenerator
	ttl    time.Duration
	size   int
	now    func() time.Time
	logger *slog.Logger

	// coalesce is nil unless concurrent stale readers should share one refresh.
	coalesce *singleflight.Group

	refreshes atomic.Int64

	hooksMu sync.RWMutex
	hooks   []RefreshHook
}

func newCache(fetch *fetchers, mocks *MockGenerator, opts Options, logger *slog.Logger) *Cache {
	c := &Cache{
		fetch:  fetch,
		mocks:  mocks,
		ttl:    opts.TTL,
		size:   opts.ListSize,
		now:    opts.Now,
		logger: logger,
	}
	if opts.SingleFlight {
		c.coalesce = &singleflight.Group{}
	}
	return c
}

// OnRefresh registers a hook invoked after every refresh.
func (c *Cache) OnRefresh(hook RefreshHook) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.hooks = append(c.hooks, hook)
}

// Refreshes reports how many fan-outs have run.
func (c *Cache) Refreshes() int64 {
	return c.refreshes.Load()
}

// Snapshot returns a deep copy of the current contents.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.clone()
}

// LastUpdated returns when the cache was last stamped (zero if never).
func (c *Cache) LastUpdated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.LastUpdated
}

func (c *Cache) stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.LastUpdated.IsZero() || c.now().Sub(c.snap.LastUpdated) > c.ttl
}

// RefreshIfNeeded repopulates every slot when the cache is empty or older than the TTL.
// After it returns, every slot is non-empty.
func (c *Cache) RefreshIfNeeded(ctx context.Context) {
	c.refreshIfNeeded(context.WithoutCancel(ctx))
}

// Warm is RefreshIfNeeded bound to ctx: cancelling ctx cuts the fan-out short and
// the remaining slots are filled with placeholders.
func (c *Cache) Warm(ctx context.Context) {
	c.refreshIfNeeded(ctx)
}

func (c *Cache) refreshIfNeeded(ctx context.Context) {
	if !c.stale() {
		return
	}

	if c.coalesce == nil {
		c.refresh(ctx)
		return
	}

	_, _, _ = c.coalesce.Do("refresh", func() (any, error) {
		if c.stale() {
			c.refresh(ctx)
		}
		return nil, nil
	})
}

// refresh fans out all fetchers and swaps the results in under the lock.
func (c *Cache) refresh(ctx context.Context) {
	c.refreshes.Add(1)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	var next Snapshot
	var g errgroup.Group
	g.Go(guard("trending", func() {
		next.Trending = c.fetch.Trending(ctx)
		next.TopRated = c.fetch.TopRated(next.Trending)
	}))
	g.Go(guard("new_releases", func() {
		next.NewReleases = c.fetch.NewReleases(ctx)
	}))
	g.Go(guard("featured", func() {
		next.Featured = c.fetch.Featured(ctx)
	}))
	g.Go(guard("horror", func() {
		next.HorrorGames = c.fetch.Horror(ctx)
	}))

	if err := g.Wait(); err != nil {
		c.logger.Error("catalog refresh failed, filling gaps with placeholders", "error", err)
	}
	c.fillGaps(&next)
	next.LastUpdated = c.now()

	c.mu.Lock()
	c.snap = next
	c.mu.Unlock()

	c.logger.Info("catalog refreshed",
		"duration", time.Since(start),
		"counts", next.Counts(),
	)

	c.runHooks(ctx, next.clone())
}

// guard converts a panic in a fan-out branch into an error.
func guard(name string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panicked: %v\n%s", name, r, debug.Stack())
			}
		}()
		fn()
		return nil
	}
}

func (c *Cache) fillGaps(s *Snapshot) {
	if len(s.Trending) == 0 {
		s.Trending = c.mocks.Mocks(c.size, LabelTopSeller)
	}
	if len(s.TopRated) == 0 {
		s.TopRated = c.mocks.Mocks(c.size, LabelTopRated)
	}
	if len(s.NewReleases) == 0 {
		s.NewReleases = c.mocks.Mocks(c.size, LabelNewRelease)
	}
	if s.Featured == nil {
		s.Featured = c.mocks.Mock(LabelFeatured)
	}
	if len(s.HorrorGames) == 0 {
		s.HorrorGames = c.mocks.Mocks(c.size, LabelHorror)
	}
}

func (c *Cache) runHooks(ctx context.Context, snap Snapshot) {
	c.hooksMu.RLock()
	hooks := append([]RefreshHook(nil), c.hooks...)
	c.hooksMu.RUnlock()

	for _, hook := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("catalog refresh hook panicked", "panic", fmt.Sprint(r))
				}
			}()
			hook(ctx, snap)
		}()
	}
}
