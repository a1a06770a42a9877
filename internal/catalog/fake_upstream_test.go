package catalog

import (
	"context"
	"math/rand/v2"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gamevault/gamevault-server/internal/logger"
	"github.com/gamevault/gamevault-server/internal/steam"
)

// fakeUpstream is an in-memory Upstream. Unset responses behave like a Steam outage.
type fakeUpstream struct {
	mu sync.Mutex

	apps       map[string]*steam.AppDetails
	players    map[string]int
	categories *steam.FeaturedCategories
	featured   *steam.Featured
	search     *steam.StoreSearch
	image      []byte

	failAll    error
	panicCats  bool
	categoryCh chan struct{} // when set, FeaturedCategories blocks until it is closed
	hang       bool          // when set, list calls block until ctx is done

	appCalls      atomic.Int32
	categoryCalls atomic.Int32
	searchCalls   atomic.Int32
}

var errOutage = &steam.UpstreamError{Op: "test", StatusCode: 503, Err: steam.ErrServer}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		apps:    make(map[string]*steam.AppDetails),
		players: make(map[string]int),
	}
}

func (f *fakeUpstream) addApp(id string, d *steam.AppDetails) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apps[id] = d
}

func (f *fakeUpstream) AppDetails(_ context.Context, appID string) (*steam.AppDetails, error) {
	f.appCalls.Add(1)
	if f.failAll != nil {
		return nil, f.failAll
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.apps[appID]
	if !ok {
		return nil, &steam.UpstreamError{Op: "appdetails", AppID: appID, StatusCode: 200, Err: steam.ErrNotFound}
	}
	return d, nil
}

func (f *fakeUpstream) FeaturedCategories(ctx context.Context) (*steam.FeaturedCategories, error) {
	f.categoryCalls.Add(1)
	if f.hang {
		<-ctx.Done()
		return nil, &steam.TransportError{Op: "featuredcategories", Err: ctx.Err()}
	}
	if f.categoryCh != nil {
		<-f.categoryCh
	}
	if f.panicCats {
		panic("featuredcategories exploded")
	}
	if f.failAll != nil {
		return nil, f.failAll
	}
	if f.categories == nil {
		return nil, errOutage
	}
	return f.categories, nil
}

func (f *fakeUpstream) Featured(ctx context.Context) (*steam.Featured, error) {
	if f.hang {
		<-ctx.Done()
		return nil, &steam.TransportError{Op: "featured", Err: ctx.Err()}
	}
	if f.failAll != nil {
		return nil, f.failAll
	}
	if f.featured == nil {
		return nil, errOutage
	}
	return f.featured, nil
}

func (f *fakeUpstream) Search(context.Context, string) (*steam.StoreSearch, error) {
	f.searchCalls.Add(1)
	if f.failAll != nil {
		return nil, f.failAll
	}
	if f.search == nil {
		return nil, errOutage
	}
	return f.search, nil
}

func (f *fakeUpstream) CurrentPlayers(_ context.Context, appID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if count, ok := f.players[appID]; ok {
		return count, nil
	}
	return 0, &steam.UpstreamError{Op: "players", AppID: appID, StatusCode: 200, Err: steam.ErrNotFound}
}

// imageUpstream adds cover downloads to fakeUpstream.
type imageUpstream struct {
	*fakeUpstream
}

func (f imageUpstream) Image(context.Context, string) ([]byte, error) {
	if f.image == nil {
		return nil, errOutage
	}
	return f.image, nil
}

func app(name string, genres ...string) *steam.AppDetails {
	d := &steam.AppDetails{
		Name:             name,
		ShortDescription: name + " blurb",
		HeaderImage:      "https://cdn.example/" + name + "/header.jpg",
		Developers:       []string{name + " Studio"},
		Publishers:       []string{"Pub"},
		Platforms:        steam.Platforms{Windows: true},
		ReleaseDate:      steam.ReleaseDate{Date: "10 Oct, 2007"},
	}
	for _, g := range genres {
		d.Genres = append(d.Genres, steam.Description{Description: g})
	}
	return d
}

func items(ids ...int) steam.Bucket {
	b := steam.Bucket{}
	for _, id := range ids {
		b.Items = append(b.Items, steam.Item{ID: id, Name: "App " + strconv.Itoa(id)})
	}
	return b
}

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, time.April, 9, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCatalog(t *testing.T, upstream Upstream, clock *testClock, tweak ...func(*Options)) *Catalog {
	t.Helper()
	opts := Options{
		TTL:      15 * time.Minute,
		ListSize: 6,
		Now:      clock.Now,
		Rand:     rand.New(rand.NewPCG(1, 2)),
	}
	for _, fn := range tweak {
		fn(&opts)
	}
	return New(upstream, opts, logger.Discard())
}
