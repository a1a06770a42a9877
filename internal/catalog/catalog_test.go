package catalog

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/gamevault/gamevault-server/internal/errors"
	"github.com/gamevault/gamevault-server/internal/domain"
	"github.com/gamevault/gamevault-server/internal/steam"
)

// healthyUpstream serves a small but complete store.
func healthyUpstream() *fakeUpstream {
	up := newFakeUpstream()
	up.addApp("730", app("Counter-Strike 2", "Action"))
	up.addApp("570", app("Dota 2", "Strategy"))
	up.addApp("440", app("Team Fortress 2", "Action"))
	up.addApp("1196590", app("Resident Evil Village", "Action", "Survival Horror"))
	up.addApp("381210", app("Dead by Daylight", "Horror"))
	up.addApp("620", app("Portal 2", "Puzzle"))

	up.apps["730"].Metacritic = &steam.Metacritic{Score: 83}
	up.apps["570"].Metacritic = &steam.Metacritic{Score: 90}
	up.players["730"] = 1_250_000

	up.categories = &steam.FeaturedCategories{
		TopSellers: steam.Bucket{Items: []steam.Item{
			{ID: 1675200, Name: "Steam Deck"},
			{ID: 730, Name: "Counter-Strike 2"},
			{ID: 570, Name: "Dota 2"},
			{ID: 440, Name: "Team Fortress 2"},
		}},
		NewReleases:     items(1196590, 620),
		Specials:        items(381210, 730),
		TopRated:        items(440),
		PopularUpcoming: items(),
	}
	up.featured = &steam.Featured{FeaturedWin: []steam.Item{
		{ID: 1675200, Name: "Steam Deck 512GB"},
		{ID: 620, Name: "Portal 2"},
	}}
	return up
}

func ids(games []*domain.Game) []string {
	out := make([]string, len(games))
	for i, g := range games {
		out[i] = g.ID
	}
	return out
}

func TestCatalog_HealthyRefresh(t *testing.T) {
	ctx := context.Background()
	cat := newTestCatalog(t, healthyUpstream(), newTestClock())

	trending := cat.Trending(ctx)
	assert.Equal(t, []string{"730", "570", "440"}, ids(trending), "Steam Deck must be filtered")
	assert.Equal(t, 1_250_000, trending[0].CurrentPlayers, "live count wins")
	assert.Equal(t, FallbackPlayerCount("570"), trending[1].CurrentPlayers)

	assert.Equal(t, []string{"570", "730", "440"}, ids(cat.TopRated(ctx)), "sorted by rating desc, ties stable")
	assert.Equal(t, []string{"1196590", "620"}, ids(cat.NewReleases(ctx)))
	assert.Equal(t, "620", cat.Featured(ctx).ID)
	assert.Equal(t, []string{"1196590", "381210"}, ids(cat.Horror(ctx)))

	assert.Equal(t, int64(1), cat.Cache().Refreshes())
}

func TestCatalog_OutageServesMocks(t *testing.T) {
	failures := map[string]error{
		"server error": &steam.UpstreamError{Op: "test", StatusCode: 502, Err: steam.ErrServer},
		"malformed":    &steam.UpstreamError{Op: "test", StatusCode: 200, Err: steam.ErrMalformed},
		"timeout":      &steam.TransportError{Op: "test", Err: context.DeadlineExceeded},
		"breaker open": &steam.TransportError{Op: "test", Err: steam.ErrCircuitOpen},
	}

	for name, failure := range failures {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			up := newFakeUpstream()
			up.failAll = failure
			cat := newTestCatalog(t, up, newTestClock())

			lists := map[string][]*domain.Game{
				LabelTopSeller:  cat.Trending(ctx),
				LabelTopRated:   cat.TopRated(ctx),
				LabelNewRelease: cat.NewReleases(ctx),
				LabelHorror:     cat.Horror(ctx),
			}
			for label, games := range lists {
				require.Len(t, games, 6, label)
				for _, g := range games {
					assert.True(t, IsMock(g))
					assert.True(t, strings.HasPrefix(g.Title, label), g.Title)
				}
			}

			featured := cat.Featured(ctx)
			require.NotNil(t, featured)
			assert.True(t, strings.HasPrefix(featured.Title, "Featured Game "))
		})
	}
}

func TestCatalog_HorrorMocks(t *testing.T) {
	up := newFakeUpstream()
	cat := newTestCatalog(t, up, newTestClock())

	for _, g := range cat.Horror(context.Background()) {
		assert.InDelta(t, 4.5, g.Rating, 0.0001)
		assert.True(t, strings.HasPrefix(g.Title, "Horror"))
	}
}

func TestCatalog_SteamDeckOnlyListFallsBackUnfiltered(t *testing.T) {
	up := newFakeUpstream()
	up.addApp("1675200", app("Steam Deck"))
	up.categories = &steam.FeaturedCategories{
		TopSellers: steam.Bucket{Items: []steam.Item{{ID: 1675200, Name: "Steam Deck"}}},
	}
	up.featured = &steam.Featured{FeaturedWin: []steam.Item{{ID: 1675200, Name: "Steam Deck"}}}

	cat := newTestCatalog(t, up, newTestClock())

	assert.Equal(t, []string{"1675200"}, ids(cat.Trending(context.Background())))
	assert.Equal(t, "1675200", cat.Featured(context.Background()).ID)
}

func TestCatalog_PartialResolutionDropsFailures(t *testing.T) {
	up := healthyUpstream()
	up.categories.TopSellers = items(730, 999999, 440)

	cat := newTestCatalog(t, up, newTestClock())

	assert.Equal(t, []string{"730", "440"}, ids(cat.Trending(context.Background())))
}

func TestCatalog_PanickingUpstreamServesMocks(t *testing.T) {
	up := healthyUpstream()
	up.panicCats = true

	cat := newTestCatalog(t, up, newTestClock())
	ctx := context.Background()

	assert.True(t, allMocks(cat.Trending(ctx)))
	assert.True(t, allMocks(cat.NewReleases(ctx)))
	assert.True(t, allMocks(cat.Horror(ctx)))
	assert.Equal(t, "620", cat.Featured(ctx).ID, "featured does not depend on featuredcategories")
}

func TestCache_RefreshOncePerTTL(t *testing.T) {
	clock := newTestClock()
	up := healthyUpstream()
	cat := newTestCatalog(t, up, clock)
	ctx := context.Background()

	assert.False(t, cat.Cache().Snapshot().Populated())

	cat.Trending(ctx)
	cat.Horror(ctx)
	assert.Equal(t, int64(1), cat.Cache().Refreshes())
	assert.Equal(t, clock.Now(), cat.Cache().LastUpdated())

	clock.Advance(15 * time.Minute)
	cat.Featured(ctx)
	assert.Equal(t, int64(1), cat.Cache().Refreshes(), "exactly at the TTL is still fresh")

	clock.Advance(time.Second)
	cat.Featured(ctx)
	assert.Equal(t, int64(2), cat.Cache().Refreshes())
}

func TestCache_SingleFlightCoalescesStaleReaders(t *testing.T) {
	up := healthyUpstream()
	up.categoryCh = make(chan struct{})
	cat := newTestCatalog(t, up, newTestClock(), func(o *Options) { o.SingleFlight = true })

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			games := cat.Trending(context.Background())
			assert.NotEmpty(t, games)
		})
	}

	time.Sleep(20 * time.Millisecond)
	close(up.categoryCh)
	wg.Wait()

	assert.Equal(t, int64(1), cat.Cache().Refreshes())
	assert.Equal(t, int32(1), up.categoryCalls.Load(), "bucket reads are shared within a refresh")
}

func TestCache_SnapshotIsACopy(t *testing.T) {
	cat := newTestCatalog(t, healthyUpstream(), newTestClock())
	ctx := context.Background()

	trending := cat.Trending(ctx)
	trending[0].Title = "mutated"
	trending[0].Genres[0] = "mutated"

	fresh := cat.Trending(ctx)
	assert.Equal(t, "Counter-Strike 2", fresh[0].Title)
	assert.Equal(t, "Action", fresh[0].Genres[0])
}

func TestCache_OnRefreshHooks(t *testing.T) {
	cat := newTestCatalog(t, healthyUpstream(), newTestClock())

	var got Snapshot
	cat.Cache().OnRefresh(func(_ context.Context, snap Snapshot) {
		panic("hook failures must not break refresh")
	})
	cat.Cache().OnRefresh(func(_ context.Context, snap Snapshot) {
		got = snap
	})

	cat.Warm(context.Background())

	require.True(t, got.Populated())
	assert.Equal(t, 3, got.Counts()["trending"])
	assert.Equal(t, 1, got.Counts()["featured"])
}

func TestSnapshot_All(t *testing.T) {
	a1 := &domain.Game{ID: "a", Title: "first"}
	b := &domain.Game{ID: "b"}
	a2 := &domain.Game{ID: "a", Title: "second"}
	c := &domain.Game{ID: "c"}

	snap := Snapshot{
		Trending:    []*domain.Game{a1, b},
		TopRated:    []*domain.Game{a2},
		Featured:    c,
		HorrorGames: []*domain.Game{b},
	}

	all := snap.All()
	assert.Equal(t, []string{"a", "b", "c"}, ids(all))
	assert.Equal(t, "second", all[0].Title, "last occurrence wins")
}

func TestCatalog_Game(t *testing.T) {
	up := healthyUpstream()
	cat := newTestCatalog(t, up, newTestClock())
	ctx := context.Background()

	t.Run("valid id", func(t *testing.T) {
		g, err := cat.Game(ctx, "440")
		require.NoError(t, err)
		assert.Equal(t, "440", g.ID)
		assert.Equal(t, "Team Fortress 2", g.Title)
	})

	t.Run("no digits", func(t *testing.T) {
		_, err := cat.Game(ctx, "abc")
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	})

	t.Run("unknown app serves placeholder with requested id", func(t *testing.T) {
		g, err := cat.Game(ctx, "31337")
		require.NoError(t, err)
		assert.Equal(t, "31337", g.ID)
		assert.Equal(t, "https://store.steampowered.com/app/31337", g.SteamURL)
		assert.True(t, strings.HasPrefix(g.Title, "Game Details Game "))
	})

	t.Run("details are memoized", func(t *testing.T) {
		before := up.appCalls.Load()
		_, _ = cat.Game(ctx, "620")
		_, _ = cat.Game(ctx, "620")
		assert.Equal(t, before+1, up.appCalls.Load())
	})
}

func solidPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 92, 43))
	for y := range 43 {
		for x := range 92 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y * 3), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCatalog_FeaturedBlurHash(t *testing.T) {
	up := healthyUpstream()
	up.image = solidPNG(t)

	cat := newTestCatalog(t, imageUpstream{up}, newTestClock(), func(o *Options) { o.BlurHash = true })
	featured := cat.Featured(context.Background())
	assert.Len(t, featured.CoverBlurHash, 28)

	up2 := healthyUpstream()
	cat2 := newTestCatalog(t, imageUpstream{up2}, newTestClock(), func(o *Options) { o.BlurHash = true })
	assert.Empty(t, cat2.Featured(context.Background()).CoverBlurHash, "download failure leaves it empty")
	assert.Equal(t, "620", cat2.Featured(context.Background()).ID)
}

func TestCatalog_FeaturedPickWhileListsFallBack(t *testing.T) {
	up := newFakeUpstream()
	up.addApp("620", app("Portal 2", "Puzzle"))
	up.addApp("440", app("Team Fortress 2", "Action"))
	up.featured = &steam.Featured{FeaturedWin: items(620, 440).Items}

	for range 20 {
		cat := newTestCatalog(t, up, newTestClock())
		cat.Warm(context.Background())

		snap := cat.Cache().Snapshot()
		assert.False(t, IsMock(snap.Featured))
		assert.Contains(t, []string{"620", "440"}, snap.Featured.ID)
		assert.True(t, allMocks(snap.Trending))
		assert.True(t, allMocks(snap.NewReleases))
		assert.True(t, allMocks(snap.HorrorGames))
	}
}

func TestFetchers_HorrorBucketCapAndTruncation(t *testing.T) {
	up := newFakeUpstream()
	bucket := func(base int) steam.Bucket {
		b := steam.Bucket{Items: []steam.Item{{ID: 1675200, Name: "Steam Deck OLED"}}}
		for i := range 5 {
			id := base + i
			up.addApp(strconv.Itoa(id), app("Scary "+strconv.Itoa(id), "Horror"))
			b.Items = append(b.Items, steam.Item{ID: id, Name: "Scary " + strconv.Itoa(id)})
		}
		return b
	}
	up.addApp("1675200", app("Steam Deck OLED", "Horror"))
	up.categories = &steam.FeaturedCategories{
		TopSellers:      bucket(100),
		NewReleases:     bucket(200),
		Specials:        bucket(300),
		TopRated:        steam.Bucket{},
		PopularUpcoming: steam.Bucket{},
	}

	cat := newTestCatalog(t, up, newTestClock())
	horror := cat.fetch.Horror(context.Background())

	assert.Equal(t, int32(9), up.appCalls.Load(), "three items per bucket, Steam Deck excluded")
	assert.Equal(t, []string{"100", "101", "102", "200", "201", "202"}, ids(horror))
}

func TestFetchers_NewReleasesSkipsSteamDeck(t *testing.T) {
	up := healthyUpstream()
	up.categories.NewReleases = steam.Bucket{Items: []steam.Item{
		{ID: 1675200, Name: "Steam Deck Dock"},
		{ID: 1196590, Name: "Resident Evil Village"},
	}}
	up.addApp("1675200", app("Steam Deck Dock"))

	cat := newTestCatalog(t, up, newTestClock())

	assert.Equal(t, []string{"1196590"}, ids(cat.fetch.NewReleases(context.Background())))
}

func TestCatalog_WarmStopsWhenCancelled(t *testing.T) {
	up := newFakeUpstream()
	up.hang = true
	cat := newTestCatalog(t, up, newTestClock())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		cat.Warm(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("warm-up ignored cancellation")
	}

	snap := cat.Cache().Snapshot()
	assert.True(t, snap.Populated())
	assert.True(t, IsMock(snap.Featured))
}
