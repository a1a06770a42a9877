// Package catalog aggregates Steam store data into the GameVault game catalog.
//
// Every public read goes through a TTL cache of five category lists. Upstream
// failures of any kind degrade to placeholder records, so catalog reads never fail
// and never come back empty.
package catalog

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	domainerrors "github.com/gamevault/gamevault-server/internal/errors"
	"github.com/gamevault/gamevault-server/internal/domain"
	"github.com/gamevault/gamevault-server/internal/steam"
)

// Upstream is the slice of the Steam client the catalog depends on.
type Upstream interface {
	AppDetails(ctx context.Context, appID string) (*steam.AppDetails, error)
	FeaturedCategories(ctx context.Context) (*steam.FeaturedCategories, error)
	Featured(ctx context.Context) (*steam.Featured, error)
	Search(ctx context.Context, term string) (*steam.StoreSearch, error)
	CurrentPlayers(ctx context.Context, appID string) (int, error)
}

// ImageFetcher downloads artwork. Upstreams that implement it enable cover BlurHashes.
type ImageFetcher interface {
	Image(ctx context.Context, url string) ([]byte, error)
}

// BreakerReporter exposes the state of an upstream circuit breaker.
type BreakerReporter interface {
	BreakerState() string
}

// Options configures a Catalog.
type Options struct {
	TTL                time.Duration
	ListSize           int
	SingleFlight       bool
	DetailTTL          time.Duration
	ResolveConcurrency int
	BlurHash           bool
	Currency           string

	// Now and Rand are injectable for tests.
	Now  func() time.Time
	Rand *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = 15 * time.Minute
	}
	if o.ListSize <= 0 {
		o.ListSize = 6
	}
	if o.DetailTTL <= 0 {
		o.DetailTTL = 5 * time.Minute
	}
	if o.ResolveConcurrency <= 0 {
		o.ResolveConcurrency = 8
	}
	if o.Currency == "" {
		o.Currency = "1"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Catalog serves the aggregated game catalog.
type Catalog struct {
	cache   *Cache
	fetch   *fetchers
	mocks   *MockGenerator
	breaker BreakerReporter
	now     func() time.Time
	logger  *slog.Logger
}

// New wires a Catalog over upstream.
func New(upstream Upstream, opts Options, logger *slog.Logger) *Catalog {
	opts = opts.withDefaults()

	mocks := NewMockGenerator(opts.Rand, opts.Now)
	fetch := newFetchers(upstream, mocks, opts, logger)

	c := &Catalog{
		cache:  newCache(fetch, mocks, opts, logger),
		fetch:  fetch,
		mocks:  mocks,
		now:    opts.Now,
		logger: logger,
	}
	if br, ok := upstream.(BreakerReporter); ok {
		c.breaker = br
	}
	return c
}

// UpstreamState reports the upstream circuit breaker state, or "" when the
// upstream has no breaker.
func (c *Catalog) UpstreamState() string {
	if c.breaker == nil {
		return ""
	}
	return c.breaker.BreakerState()
}

// Cache exposes the aggregation cache (refresh hooks, health, tests).
func (c *Catalog) Cache() *Cache {
	return c.cache
}

// Warm populates the cache ahead of the first request. Unlike request-driven
// refreshes it stops early when ctx is cancelled.
func (c *Catalog) Warm(ctx context.Context) {
	c.cache.Warm(ctx)
}

func (c *Catalog) read(ctx context.Context) Snapshot {
	c.cache.RefreshIfNeeded(ctx)
	return c.cache.Snapshot()
}

// Featured returns the featured game.
func (c *Catalog) Featured(ctx context.Context) *domain.Game {
	return c.read(ctx).Featured
}

// Trending returns the top sellers.
func (c *Catalog) Trending(ctx context.Context) []*domain.Game {
	return c.read(ctx).Trending
}

// TopRated returns trending ordered by rating.
func (c *Catalog) TopRated(ctx context.Context) []*domain.Game {
	return c.read(ctx).TopRated
}

// NewReleases returns recent releases.
func (c *Catalog) NewReleases(ctx context.Context) []*domain.Game {
	return c.read(ctx).NewReleases
}

// Horror returns horror titles.
func (c *Catalog) Horror(ctx context.Context) []*domain.Game {
	return c.read(ctx).HorrorGames
}

// Game returns the full record for an app id. Ids without any digit are rejected;
// anything Steam cannot serve comes back as a placeholder carrying the requested id.
func (c *Catalog) Game(ctx context.Context, gameID string) (*domain.Game, error) {
	if !hasDigit(gameID) {
		return nil, domainerrors.Validation("Invalid game ID: must be a valid Steam app ID")
	}

	game, err := c.fetch.resolve(ctx, gameID)
	if err != nil {
		c.logger.Info("game details unavailable, serving placeholder", "app_id", gameID, "error", err)
		game = c.mocks.Mock(LabelGameDetails)
		game.ID = gameID
		game.SteamURL = domain.SteamStoreURL(gameID)
	}
	return game, nil
}
