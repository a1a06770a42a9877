package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-server/internal/store"
)

type TestEntity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Team  string `json:"team"`
	Score int    `json:"score"`
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func testEntity(s *store.Store) *store.Entity[TestEntity] {
	return store.NewEntity[TestEntity](s, "test:").
		WithIndex("email", func(e *TestEntity) []string { return []string{e.Email} }).
		WithMultiIndex("team", func(e *TestEntity) []string {
			if e.Team == "" {
				return nil
			}
			return []string{e.Team}
		})
}

func TestEntity_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	entity := testEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Name: "John", Email: "john@example.com"}))

	got, err := entity.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "John", got.Name)

	byEmail, err := entity.GetByIndex(ctx, "email", "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", byEmail.ID)
}

func TestEntity_Create_Conflicts(t *testing.T) {
	s := setupTestStore(t)
	entity := testEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "a@example.com"}))

	err := entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "b@example.com"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	err = entity.Create(ctx, "2", &TestEntity{ID: "2", Email: "a@example.com"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists, "unique index")

	_, err = entity.Get(ctx, "2")
	assert.ErrorIs(t, err, store.ErrNotFound, "failed create must not persist")
}

func TestEntity_GetMissing(t *testing.T) {
	s := setupTestStore(t)
	entity := testEntity(s)

	_, err := entity.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.True(t, store.IsNotFound(err))

	_, err = entity.GetByIndex(context.Background(), "email", "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_UpdateMovesIndexes(t *testing.T) {
	s := setupTestStore(t)
	entity := testEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "old@example.com", Team: "red"}))
	require.NoError(t, entity.Create(ctx, "2", &TestEntity{ID: "2", Email: "two@example.com", Team: "red"}))

	require.NoError(t, entity.Update(ctx, "1", &TestEntity{ID: "1", Email: "new@example.com", Team: "blue"}))

	_, err := entity.GetByIndex(ctx, "email", "old@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = entity.GetByIndex(ctx, "email", "new@example.com")
	assert.NoError(t, err)

	red, err := entity.ListByIndex(ctx, "team", "red")
	require.NoError(t, err)
	require.Len(t, red, 1)
	assert.Equal(t, "2", red[0].ID)

	err = entity.Update(ctx, "1", &TestEntity{ID: "1", Email: "two@example.com"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	err = entity.Update(ctx, "missing", &TestEntity{ID: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_ListByIndex_PrefixIsolation(t *testing.T) {
	s := setupTestStore(t)
	entity := testEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "1@x", Team: "red"}))
	require.NoError(t, entity.Create(ctx, "2", &TestEntity{ID: "2", Email: "2@x", Team: "redder"}))

	red, err := entity.ListByIndex(ctx, "team", "red")
	require.NoError(t, err)
	require.Len(t, red, 1)
	assert.Equal(t, "1", red[0].ID)
}

func TestEntity_DeleteIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	entity := testEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "a@example.com", Team: "red"}))
	require.NoError(t, entity.Delete(ctx, "1"))
	require.NoError(t, entity.Delete(ctx, "1"))

	_, err := entity.GetByIndex(ctx, "email", "a@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	red, err := entity.ListByIndex(ctx, "team", "red")
	require.NoError(t, err)
	assert.Empty(t, red)

	// The email is free again.
	require.NoError(t, entity.Create(ctx, "2", &TestEntity{ID: "2", Email: "a@example.com"}))
}

func TestEntity_ListAndCount(t *testing.T) {
	s := setupTestStore(t)
	entity := testEntity(s)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, entity.Create(ctx, id, &TestEntity{ID: id, Email: id + "@x", Team: "red"}))
	}

	var ids []string
	for e, err := range entity.List(ctx) {
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids, "index keys are skipped")

	n, err := entity.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEntity_MutateIsAtomic(t *testing.T) {
	s := setupTestStore(t)
	entity := testEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "a@x"}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	failures := 0
	for range 20 {
		wg.Go(func() {
			if _, err := entity.Mutate(ctx, "1", func(e *TestEntity) error {
				e.Score++
				return nil
			}); err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	got, err := entity.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 20-failures, got.Score, "every successful mutation is counted exactly once")
}

func TestEntity_MutateErrors(t *testing.T) {
	s := setupTestStore(t)
	entity := testEntity(s)
	ctx := context.Background()

	_, err := entity.Mutate(ctx, "missing", func(*TestEntity) error { return nil })
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "a@x", Score: 1}))
	boom := errors.New("boom")
	_, err = entity.Mutate(ctx, "1", func(e *TestEntity) error {
		e.Score = 99
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := entity.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score, "failed mutation is not written")
}

func TestEntity_CanceledContext(t *testing.T) {
	s := setupTestStore(t)
	entity := testEntity(s)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, entity.Create(ctx, "1", &TestEntity{ID: "1"}), context.Canceled)
	_, err := entity.Get(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)
}
