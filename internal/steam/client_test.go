package steam

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-server/internal/logger"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err, "failed to load fixture %s", name)
	return data
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tweak ...func(*Config)) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Config{
		StoreURL: server.URL + "/api",
		WebURL:   server.URL,
		Region:   "us",
		Currency: "1",
		Timeout:  2 * time.Second,
		RPS:      1000,
		Burst:    1000,
	}
	for _, fn := range tweak {
		fn(&cfg)
	}

	client := New(cfg, logger.Discard())
	t.Cleanup(client.Close)
	return client
}

func TestClient_AppDetails(t *testing.T) {
	fixture := loadFixture(t, "appdetails_440.json")

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/appdetails", r.URL.Path)
		assert.Equal(t, "440", r.URL.Query().Get("appids"))
		assert.Equal(t, "us", r.URL.Query().Get("cc"))
		assert.Equal(t, "1", r.URL.Query().Get("currency"))
		assert.Equal(t, "GameVault/1.0", r.Header.Get("User-Agent"))
		w.Write(fixture)
	})

	details, err := client.AppDetails(context.Background(), "440")
	require.NoError(t, err)

	assert.Equal(t, "Team Fortress 2", details.Name)
	assert.Equal(t, []string{"Valve"}, details.Developers)
	assert.True(t, details.Platforms.Windows)
	assert.False(t, details.Platforms.Mac)
	assert.True(t, details.Platforms.Linux)
	require.NotNil(t, details.Metacritic)
	assert.Equal(t, 92, details.Metacritic.Score)
	assert.Nil(t, details.PriceOverview)
	assert.Len(t, details.Screenshots, 4)
	assert.Equal(t, "https://cdn/movie_max.webm", details.Movies[0].Webm.Max)
	assert.Equal(t, "10 Oct, 2007", details.ReleaseDate.Date)
	assert.Equal(t, "Action", details.Genres[0].Description)
	assert.Equal(t, "Online PvP", details.Categories[1].Description)
}

func TestClient_AppDetails_Failures(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    error
		wantType   string
	}{
		{
			name:       "unsuccessful app",
			statusCode: http.StatusOK,
			body:       `{"440":{"success":false}}`,
			wantErr:    ErrNotFound,
			wantType:   "upstream",
		},
		{
			name:       "missing app key",
			statusCode: http.StatusOK,
			body:       `{"999":{"success":true,"data":{"name":"Other"}}}`,
			wantErr:    ErrNotFound,
			wantType:   "upstream",
		},
		{
			name:       "data without a name",
			statusCode: http.StatusOK,
			body:       `{"440":{"success":true,"data":{"short_description":"no name"}}}`,
			wantErr:    ErrMalformed,
			wantType:   "upstream",
		},
		{
			name:       "data is an array",
			statusCode: http.StatusOK,
			body:       `{"440":{"success":true,"data":[]}}`,
			wantErr:    ErrMalformed,
			wantType:   "upstream",
		},
		{
			name:       "not json",
			statusCode: http.StatusOK,
			body:       `<html>maintenance</html>`,
			wantErr:    ErrMalformed,
			wantType:   "upstream",
		},
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			wantErr:    ErrRateLimited,
			wantType:   "upstream",
		},
		{
			name:       "server error",
			statusCode: http.StatusBadGateway,
			wantErr:    ErrServer,
			wantType:   "upstream",
		},
		{
			name:       "not found status",
			statusCode: http.StatusNotFound,
			wantErr:    ErrNotFound,
			wantType:   "upstream",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			})

			details, err := client.AppDetails(context.Background(), "440")
			require.Error(t, err)
			assert.Nil(t, details)
			assert.ErrorIs(t, err, tt.wantErr)

			var upstream *UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, "appdetails", upstream.Op)
			assert.Equal(t, "440", upstream.AppID)
			assert.Equal(t, tt.statusCode, upstream.StatusCode)
		})
	}
}

func TestClient_TransportErrors(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		}, func(cfg *Config) { cfg.Timeout = 50 * time.Millisecond })

		_, err := client.AppDetails(context.Background(), "440")

		var transport *TransportError
		require.ErrorAs(t, err, &transport)
		assert.Equal(t, "appdetails", transport.Op)
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()

		client := New(Config{StoreURL: server.URL, RPS: 1000, Burst: 1000}, logger.Discard())
		defer client.Close()

		_, err := client.FeaturedCategories(context.Background())

		var transport *TransportError
		assert.ErrorAs(t, err, &transport)
	})

	t.Run("canceled context", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{}`))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Featured(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_CircuitBreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(cfg *Config) {
		cfg.BreakerFailures = 3
		cfg.BreakerCooldown = time.Minute
	})

	for range 3 {
		_, err := client.FeaturedCategories(context.Background())
		require.ErrorIs(t, err, ErrServer)
	}
	assert.Equal(t, "open", client.BreakerState())

	_, err := client.FeaturedCategories(context.Background())
	assert.ErrorIs(t, err, ErrCircuitOpen)

	var transport *TransportError
	assert.ErrorAs(t, err, &transport)
	assert.Equal(t, int32(3), hits.Load(), "open breaker must not reach the server")
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, func(cfg *Config) { cfg.BreakerFailures = 2 })

	for range 5 {
		_, err := client.AppDetails(context.Background(), "1")
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, "closed", client.BreakerState())
}

func TestClient_FeaturedCategories(t *testing.T) {
	fixture := loadFixture(t, "featuredcategories.json")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/featuredcategories", r.URL.Path)
		w.Write(fixture)
	})

	cats, err := client.FeaturedCategories(context.Background())
	require.NoError(t, err)

	require.Len(t, cats.TopSellers.Items, 3)
	assert.Equal(t, "730", cats.TopSellers.Items[1].AppID())
	assert.Equal(t, "Resident Evil 4", cats.NewReleases.Items[0].Name)
	assert.Empty(t, cats.Specials.Items)
	assert.Empty(t, cats.PopularUpcoming.Items)
}

func TestClient_Featured(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"featured_win":[{"id":620,"name":"Portal 2"}],"featured_mac":[],"layout":"defaultv2"}`))
	})

	featured, err := client.Featured(context.Background())
	require.NoError(t, err)
	require.Len(t, featured.FeaturedWin, 1)
	assert.Equal(t, "620", featured.FeaturedWin[0].AppID())
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/storesearch", r.URL.Path)
		assert.Equal(t, "half life", r.URL.Query().Get("term"))
		assert.Equal(t, "english", r.URL.Query().Get("l"))
		assert.Equal(t, "us", r.URL.Query().Get("cc"))
		w.Write([]byte(`{"total":2,"items":[{"type":"app","name":"Half-Life","id":70},{"type":"app","name":"Half-Life 2","id":220}]}`))
	})

	result, err := client.Search(context.Background(), "half life")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, "220", result.Items[1].AppID())
}

func TestClient_CurrentPlayers(t *testing.T) {
	const key = "0123456789ABCDEF0123456789ABCDEF"

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ISteamUserStats/GetNumberOfCurrentPlayers/v1/", r.URL.Path)
		assert.Equal(t, key, r.URL.Query().Get("key"))
		switch r.URL.Query().Get("appid") {
		case "440":
			w.Write([]byte(`{"response":{"player_count":73512,"result":1}}`))
		default:
			w.Write([]byte(`{"response":{"result":42}}`))
		}
	}, func(cfg *Config) { cfg.APIKey = key })

	count, err := client.CurrentPlayers(context.Background(), "440")
	require.NoError(t, err)
	assert.Equal(t, 73512, count)

	_, err = client.CurrentPlayers(context.Background(), "0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Image(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("jpeg-bytes"))
	})

	data, err := client.Image(context.Background(), client.cfg.WebURL+"/header.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	_, err = client.Image(context.Background(), client.cfg.WebURL+"/missing.jpg")
	assert.Error(t, err)

	_, err = client.Image(context.Background(), "not a url")
	var transport *TransportError
	assert.True(t, errors.As(err, &transport))
}

func TestErrorMessages(t *testing.T) {
	err := &UpstreamError{Op: "appdetails", AppID: "440", StatusCode: 503, Err: ErrServer}
	assert.Equal(t, "steam appdetails [440]: status 503: steam: server error", err.Error())

	terr := &TransportError{Op: "featured", Err: context.DeadlineExceeded}
	assert.Equal(t, "steam featured: transport: context deadline exceeded", terr.Error())
}
