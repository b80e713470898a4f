package history

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/pantrypal/backend/internal/types"
)

func testContext() context.Context {
	return context.Background()
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	store, err := NewFileStore(path, nil)
	require.NoError(t, err)
	return store
}

func testRecipe() types.Recipe {
	return types.Recipe{
		Name: "Chicken Rice Bowl",
		Ingredients: []types.Ingredient{
			types.NewIngredient("chicken", "200g"),
			types.NewIngredient("lime", "1"),
		},
		Instructions: []string{"Cook rice", "Grill chicken"},
		Nutrition:    map[string]string{"calories": "450 kcal"},
	}
}

func TestFileStore_Load(t *testing.T) {
	t.Run("should return empty list for fresh store", func(t *testing.T) {
		store := newTestFileStore(t)

		entries, err := store.Load(testContext())

		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("should return empty list when file is absent", func(t *testing.T) {
		store := newTestFileStore(t)
		require.NoError(t, os.Remove(store.path))

		entries, err := store.Load(testContext())

		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("should treat corrupt content as empty history", func(t *testing.T) {
		store := newTestFileStore(t)
		require.NoError(t, os.WriteFile(store.path, []byte("{not json!"), 0o644))

		entries, err := store.Load(testContext())

		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("should treat empty file as empty history", func(t *testing.T) {
		store := newTestFileStore(t)
		require.NoError(t, os.WriteFile(store.path, []byte(""), 0o644))

		entries, err := store.Load(testContext())

		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestFileStore_Save(t *testing.T) {
	store := newTestFileStore(t)
	ctx := testContext()

	t.Run("should round-trip a saved entry", func(t *testing.T) {
		subs := map[string][]string{"lime": {"lemon", "vinegar"}}

		saved, err := store.Save(ctx, testRecipe(), "http://img/1", []string{"chicken", "rice"}, subs)
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)

		entries, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		got := entries[0]
		assert.Equal(t, "Chicken Rice Bowl", got.Recipe.Name)
		assert.Equal(t, "http://img/1", got.ImageURL)
		assert.Equal(t, []string{"chicken", "rice"}, got.UserIngs)
		assert.Equal(t, subs, got.Substitutions)
		assert.Equal(t, []string{"chicken", "lime"}, got.RecipeIngs)

		_, err = time.Parse("2006-01-02T15:04:05.999999", got.Timestamp)
		assert.NoError(t, err, "timestamp should be parseable ISO-8601")
	})

	t.Run("should append in save order", func(t *testing.T) {
		_, err := store.Save(ctx, types.Recipe{Name: "Second"}, "", nil, nil)
		require.NoError(t, err)

		entries, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Chicken Rice Bowl", entries[0].Recipe.Name)
		assert.Equal(t, "Second", entries[1].Recipe.Name)
		assert.NotEqual(t, entries[0].ID, entries[1].ID)
	})

	t.Run("should write human-readable indented JSON", func(t *testing.T) {
		data, err := os.ReadFile(store.path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "\n  ")
		assert.True(t, json.Valid(data))
	})
}

func TestFileStore_Delete(t *testing.T) {
	store := newTestFileStore(t)
	ctx := testContext()

	first, err := store.Save(ctx, testRecipe(), "", nil, nil)
	require.NoError(t, err)
	second, err := store.Save(ctx, types.Recipe{Name: "Keeper"}, "", nil, nil)
	require.NoError(t, err)

	t.Run("should remove exactly the matching entry", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, first.ID))

		entries, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, second.ID, entries[0].ID)
	})

	t.Run("should be a no-op for an absent id", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "does-not-exist"))

		entries, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestFileStore_Clear(t *testing.T) {
	store := newTestFileStore(t)
	ctx := testContext()

	_, err := store.Save(ctx, testRecipe(), "", nil, nil)
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))

	entries, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
