package catalog

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/gamevault/gamevault-server/internal/domain"
	"github.com/gamevault/gamevault-server/internal/media/images"
	"github.com/gamevault/gamevault-server/internal/steam"
)

const (
	steamDeckMarker = "Steam Deck"

	horrorPerBucket = 3
	searchHits      = 8

	blurHashTTL = 24 * time.Hour
)

// horrorKeywords select horror titles by genre or tag.
var horrorKeywords = []string{"horror", "survival horror", "psychological horror", "dark", "zombie"}

// fetchers resolves store lists into normalized records. Every exported-to-cache
// method falls back to placeholders and never returns an empty result.
type fetchers struct {
	upstream    Upstream
	images      ImageFetcher
	mocks       *MockGenerator
	currency    string
	listSize    int
	concurrency int
	blurHash    bool
	logger      *slog.Logger

	details  *cache.Cache // app id -> *domain.Game (real records only)
	players  *cache.Cache // app id -> int
	hashes   *cache.Cache // cover URL -> blurhash
	lists    singleflight.Group
}

func newFetchers(upstream Upstream, mocks *MockGenerator, opts Options, logger *slog.Logger) *fetchers {
	f := &fetchers{
		upstream:    upstream,
		mocks:       mocks,
		currency:    opts.Currency,
		listSize:    opts.ListSize,
		concurrency: opts.ResolveConcurrency,
		blurHash:    opts.BlurHash,
		logger:      logger,
		details:     cache.New(opts.DetailTTL, janitorInterval(opts.DetailTTL)),
		players:     cache.New(opts.DetailTTL, janitorInterval(opts.DetailTTL)),
		hashes:      cache.New(blurHashTTL, time.Hour),
	}
	if img, ok := upstream.(ImageFetcher); ok {
		f.images = img
	}
	return f
}

func janitorInterval(ttl time.Duration) time.Duration {
	return max(2*ttl, time.Minute)
}

// resolve fetches, normalizes, and decorates a single app. Successful records
// are memoized for the detail TTL; failures are not.
func (f *fetchers) resolve(ctx context.Context, appID string) (*domain.Game, error) {
	if cached, ok := f.details.Get(appID); ok {
		return cached.(*domain.Game).Clone(), nil
	}

	details, err := f.upstream.AppDetails(ctx, appID)
	if err != nil {
		return nil, err
	}

	game, err := Normalize(appID, details, f.currency)
	if err != nil {
		return nil, err
	}
	game.CurrentPlayers = f.currentPlayers(ctx, appID)

	f.details.Set(appID, game.Clone(), cache.DefaultExpiration)
	return game, nil
}

// currentPlayers returns the live count, or the deterministic fallback.
func (f *fetchers) currentPlayers(ctx context.Context, appID string) int {
	if count, ok := f.livePlayers(ctx, appID); ok {
		return count
	}
	return FallbackPlayerCount(appID)
}

// livePlayers returns the memoized or freshly fetched live count.
func (f *fetchers) livePlayers(ctx context.Context, appID string) (int, bool) {
	if cached, ok := f.players.Get(appID); ok {
		return cached.(int), true
	}

	count, err := f.upstream.CurrentPlayers(ctx, appID)
	if err != nil {
		if !errors.Is(err, steam.ErrNotFound) {
			f.logger.Debug("live player count unavailable", "app_id", appID, "error", err)
		}
		return 0, false
	}

	f.players.Set(appID, count, cache.DefaultExpiration)
	return count, true
}

// resolveAll resolves ids in parallel, bounded by the configured concurrency,
// dropping any that fail. Input order is preserved.
func (f *fetchers) resolveAll(ctx context.Context, ids []string) []*domain.Game {
	results := make([]*domain.Game, len(ids))

	var eg errgroup.Group
	eg.SetLimit(f.concurrency)
	for i, appID := range ids {
		eg.Go(func() error {
			game, err := f.resolve(ctx, appID)
			if err != nil {
				f.logger.Debug("dropping unresolved app", "app_id", appID, "error", err)
				return nil
			}
			results[i] = game
			return nil
		})
	}
	_ = eg.Wait() //nolint:errcheck // workers never return errors

	return slices.DeleteFunc(results, func(g *domain.Game) bool { return g == nil })
}

// featuredCategories coalesces the concurrent bucket reads a refresh makes.
func (f *fetchers) featuredCategories(ctx context.Context) (*steam.FeaturedCategories, error) {
	v, err, _ := f.lists.Do("featuredcategories", func() (any, error) {
		return f.upstream.FeaturedCategories(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*steam.FeaturedCategories), nil
}

// withoutSteamDeck drops hardware listings from a store list.
func withoutSteamDeck(items []steam.Item) []steam.Item {
	return slices.DeleteFunc(slices.Clone(items), func(it steam.Item) bool {
		return strings.Contains(it.Name, steamDeckMarker)
	})
}

// pickIDs filters a list and returns up to n distinct ids. When filtering removes
// everything, the raw list is used instead.
func pickIDs(items []steam.Item, n int) []string {
	filtered := withoutSteamDeck(items)
	if len(filtered) == 0 {
		filtered = items
	}

	ids := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for _, it := range filtered {
		if len(ids) == n {
			break
		}
		appID := it.AppID()
		if seen[appID] {
			continue
		}
		seen[appID] = true
		ids = append(ids, appID)
	}
	return ids
}

func nonEmpty(games []*domain.Game) bool {
	return len(games) > 0
}

// list resolves one featuredcategories bucket.
func (f *fetchers) list(ctx context.Context, name, label string, bucket func(*steam.FeaturedCategories) steam.Bucket) []*domain.Game {
	return fetchWithFallback(ctx, f.logger, name,
		func(ctx context.Context) ([]*domain.Game, error) {
			cats, err := f.featuredCategories(ctx)
			if err != nil {
				return nil, err
			}
			return f.resolveAll(ctx, pickIDs(bucket(cats).Items, f.listSize)), nil
		},
		nonEmpty,
		func() []*domain.Game { return f.mocks.Mocks(f.listSize, label) },
	)
}

// Trending returns the store's top sellers.
func (f *fetchers) Trending(ctx context.Context) []*domain.Game {
	return f.list(ctx, "trending", LabelTopSeller, func(c *steam.FeaturedCategories) steam.Bucket {
		return c.TopSellers
	})
}

// NewReleases returns the store's new releases.
func (f *fetchers) NewReleases(ctx context.Context) []*domain.Game {
	return f.list(ctx, "new_releases", LabelNewRelease, func(c *steam.FeaturedCategories) steam.Bucket {
		return c.NewReleases
	})
}

// TopRated re-sorts trending by rating, highest first, keeping ties in order.
func (f *fetchers) TopRated(trending []*domain.Game) []*domain.Game {
	if len(trending) == 0 || allMocks(trending) {
		return f.mocks.Mocks(f.listSize, LabelTopRated)
	}

	out := make([]*domain.Game, len(trending))
	for i, g := range trending {
		out[i] = g.Clone()
	}
	slices.SortStableFunc(out, func(a, b *domain.Game) int {
		switch {
		case a.Rating > b.Rating:
			return -1
		case a.Rating < b.Rating:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Featured picks one featured Windows title at random.
func (f *fetchers) Featured(ctx context.Context) *domain.Game {
	game := fetchWithFallback(ctx, f.logger, "featured",
		func(ctx context.Context) (*domain.Game, error) {
			featured, err := f.upstream.Featured(ctx)
			if err != nil {
				return nil, err
			}

			candidates := withoutSteamDeck(featured.FeaturedWin)
			var pick steam.Item
			switch {
			case len(candidates) > 0:
				pick = candidates[f.mocks.intN(len(candidates))]
			case len(featured.FeaturedWin) > 0:
				pick = featured.FeaturedWin[0]
			default:
				return nil, nil
			}

			return f.resolve(ctx, pick.AppID())
		},
		func(g *domain.Game) bool { return g != nil },
		func() *domain.Game { return f.mocks.Mock(LabelFeatured) },
	)

	f.decorateCover(ctx, game)
	return game
}

// Horror collects horror titles from every featured bucket.
func (f *fetchers) Horror(ctx context.Context) []*domain.Game {
	return fetchWithFallback(ctx, f.logger, "horror",
		func(ctx context.Context) ([]*domain.Game, error) {
			cats, err := f.featuredCategories(ctx)
			if err != nil {
				return nil, err
			}

			var ids []string
			seen := make(map[string]bool)
			for _, bucket := range []steam.Bucket{
				cats.TopSellers, cats.NewReleases, cats.Specials, cats.TopRated, cats.PopularUpcoming,
			} {
				items := withoutSteamDeck(bucket.Items)
				for _, it := range items[:min(horrorPerBucket, len(items))] {
					if appID := it.AppID(); !seen[appID] {
						seen[appID] = true
						ids = append(ids, appID)
					}
				}
			}

			horror := slices.DeleteFunc(f.resolveAll(ctx, ids), func(g *domain.Game) bool {
				return !g.HasGenreOrTag(horrorKeywords...)
			})
			return horror[:min(f.listSize, len(horror))], nil
		},
		nonEmpty,
		func() []*domain.Game { return f.mocks.Mocks(f.listSize, LabelHorror) },
	)
}

// Search resolves the top store search hits for query.
func (f *fetchers) Search(ctx context.Context, query string) ([]*domain.Game, error) {
	result, err := f.upstream.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, searchHits)
	for _, it := range result.Items[:min(searchHits, len(result.Items))] {
		ids = append(ids, it.AppID())
	}
	return f.resolveAll(ctx, ids), nil
}

// decorateCover attaches a BlurHash of the cover art. Best effort.
func (f *fetchers) decorateCover(ctx context.Context, g *domain.Game) {
	if !f.blurHash || f.images == nil || g == nil || IsMock(g) || g.Cover == "" {
		return
	}
	if hash, ok := f.hashes.Get(g.Cover); ok {
		g.CoverBlurHash = hash.(string)
		return
	}

	data, err := f.images.Image(ctx, g.Cover)
	if err != nil {
		f.logger.Debug("cover download failed", "app_id", g.ID, "error", err)
		return
	}
	hash, err := images.BlurHashFromBytes(data)
	if err != nil {
		f.logger.Debug("cover blurhash failed", "app_id", g.ID, "error", err)
		return
	}

	f.hashes.Set(g.Cover, hash, cache.DefaultExpiration)
	g.CoverBlurHash = hash
}
