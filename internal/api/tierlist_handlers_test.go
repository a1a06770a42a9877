package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-server/internal/domain"
)

func createTierList(t *testing.T, ts *testServer, token string, body map[string]any) *domain.TierList {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/tierlists", body, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[*domain.TierList](t, w)
}

func TestCreateTierList(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "alice")

	t.Run("defaults", func(t *testing.T) {
		list := createTierList(t, ts, token, map[string]any{"title": "  Best RPGs  "})

		assert.NotEmpty(t, list.ID)
		assert.Equal(t, "Best RPGs", list.Title)
		assert.Equal(t, "alice", list.Username)
		assert.True(t, list.IsPublic)
		assert.Zero(t, list.Likes)
		require.Len(t, list.Tiers, 6)
		assert.Equal(t, "S", list.Tiers[0].Name)
	})

	t.Run("custom tiers with mixed years", func(t *testing.T) {
		list := createTierList(t, ts, token, map[string]any{
			"title":    "Shooters",
			"isPublic": false,
			"tiers": []map[string]any{
				{"name": "Great", "color": "#ff0000", "games": []map[string]any{
					{"gameId": "440", "title": "Team Fortress 2", "year": 2007},
					{"gameId": "730", "title": "Counter-Strike 2", "year": "Unknown"},
				}},
			},
		})

		assert.False(t, list.IsPublic)
		require.Len(t, list.Tiers, 1)
		require.Len(t, list.Tiers[0].Games, 2)
		assert.Equal(t, "440", list.Tiers[0].Games[0].GameID)
	})

	t.Run("blank title", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/tierlists", map[string]any{"title": "   "}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION", decodeAPIError(t, w).Code)
	})

	t.Run("requires auth", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/tierlists", map[string]any{"title": "x"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestListTierLists(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bobby")

	createTierList(t, ts, alice, map[string]any{"title": "Public A"})
	createTierList(t, ts, alice, map[string]any{"title": "Private A", "isPublic": false})
	createTierList(t, ts, bob, map[string]any{"title": "Public B"})

	t.Run("anonymous sees public only", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/tierlists", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		lists := decode[[]*domain.TierList](t, w)
		require.Len(t, lists, 2)
		for _, l := range lists {
			assert.True(t, l.IsPublic)
		}
	})

	t.Run("mine includes private", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/tierlists?my=true", nil, alice)
		require.Equal(t, http.StatusOK, w.Code)

		lists := decode[[]*domain.TierList](t, w)
		require.Len(t, lists, 2)
		for _, l := range lists {
			assert.Equal(t, "alice", l.Username)
		}
	})

	t.Run("empty is an array", func(t *testing.T) {
		empty := setupTestServer(t)
		w := empty.do(t, http.MethodGet, "/api/tierlists", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})
}

func TestGetTierList_Visibility(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bobby")

	private := createTierList(t, ts, alice, map[string]any{"title": "Secret", "isPublic": false})

	w := ts.do(t, http.MethodGet, "/api/tierlists/"+private.ID, nil, alice)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/tierlists/"+private.ID, nil, bob)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized to view this tier list", decodeAPIError(t, w).Message)

	w = ts.do(t, http.MethodGet, "/api/tierlists/"+private.ID, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/tierlists/tl-missing", nil, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
	apiErr := decodeAPIError(t, w)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "Tier list not found", apiErr.Message)
}

func TestUpdateTierList(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bobby")

	list := createTierList(t, ts, alice, map[string]any{"title": "Original", "description": "keep me"})

	t.Run("partial update", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, "/api/tierlists/"+list.ID, map[string]any{"title": "Renamed"}, alice)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		updated := decode[*domain.TierList](t, w)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, "keep me", updated.Description)
		assert.Len(t, updated.Tiers, 6)
		assert.False(t, updated.UpdatedAt.Before(list.UpdatedAt))
	})

	t.Run("other user", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, "/api/tierlists/"+list.ID, map[string]any{"title": "Hijack"}, bob)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Not authorized to update this tier list", decodeAPIError(t, w).Message)
	})

	t.Run("missing list", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, "/api/tierlists/tl-missing", map[string]any{"title": "x"}, alice)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteTierList(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bobby")

	list := createTierList(t, ts, alice, map[string]any{"title": "Doomed"})

	w := ts.do(t, http.MethodDelete, "/api/tierlists/"+list.ID, nil, bob)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/tierlists/"+list.ID, nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Tier list removed", decode[MessageResponse](t, w).Message)

	w = ts.do(t, http.MethodGet, "/api/tierlists/"+list.ID, nil, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLikeTierList(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bobby")

	public := createTierList(t, ts, alice, map[string]any{"title": "Likeable"})
	private := createTierList(t, ts, alice, map[string]any{"title": "Hidden", "isPublic": false})

	for want := 1; want <= 2; want++ {
		w := ts.do(t, http.MethodPost, "/api/tierlists/"+public.ID+"/like", nil, bob)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, want, decode[LikesResponse](t, w).Likes)
	}

	w := ts.do(t, http.MethodPost, "/api/tierlists/"+private.ID+"/like", nil, bob)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/tierlists/"+public.ID+"/like", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
