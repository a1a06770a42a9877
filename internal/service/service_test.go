package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-server/internal/auth"
	"github.com/gamevault/gamevault-server/internal/logger"
	"github.com/gamevault/gamevault-server/internal/sse"
	"github.com/gamevault/gamevault-server/internal/store"
	"github.com/gamevault/gamevault-server/internal/validation"
)

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(event sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *recordingEmitter) last() sse.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type testEnv struct {
	store     *store.Store
	tokens    *auth.TokenService
	auth      *AuthService
	tierLists *TierListService
	favorites *FavoritesService
	events    *recordingEmitter
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 24*time.Hour)
	require.NoError(t, err)

	v := validation.New()
	log := logger.Discard()
	events := &recordingEmitter{}

	return &testEnv{
		store:     st,
		tokens:    tokens,
		auth:      NewAuthService(st, tokens, v, log),
		tierLists: NewTierListService(st, events, v, log),
		favorites: NewFavoritesService(st, v, log),
		events:    events,
	}
}
