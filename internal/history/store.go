// Package history persists the recipe generation history. The store is an
// append-only list of entries with whole-entry delete; backends are
// interchangeable behind the Store interface.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/pantrypal/backend/internal/normalize"
	"github.com/pageza/pantrypal/backend/internal/types"
)

// Store is the capability set every history backend must satisfy. Load
// treats absent or malformed backing data as an empty history rather than an
// error; callers rely on that and must not see parse failures surface.
type Store interface {
	// Load returns all entries in save order. Absent, empty, or corrupt
	// backing data yields an empty slice, never an error.
	Load(ctx context.Context) ([]types.Entry, error)

	// Save appends a new entry built from the finalized recipe and
	// persists the full list. The entry id and timestamp are assigned
	// here, at save time.
	Save(ctx context.Context, recipe types.Recipe, imageURL string, userIngs []string, subs map[string][]string) (types.Entry, error)

	// Delete removes the entry with the given id, if present. A missing
	// id is a no-op, not an error.
	Delete(ctx context.Context, id string) error

	// Clear persists an empty history.
	Clear(ctx context.Context) error
}

// newEntry constructs the persisted entry for a finalized recipe. The
// canonical ingredient labels are derived again here so that recipe_ings
// always matches recipe.ingredients at save time, and the timestamp is local
// time, matching what history files have always contained.
func newEntry(recipe types.Recipe, imageURL string, userIngs []string, subs map[string][]string) types.Entry {
	if userIngs == nil {
		userIngs = []string{}
	}
	if subs == nil {
		subs = map[string][]string{}
	}
	return types.Entry{
		ID:            uuid.New().String(),
		Timestamp:     time.Now().Format("2006-01-02T15:04:05.999999"),
		Recipe:        recipe,
		RecipeIngs:    normalize.Ingredients(recipe.Ingredients),
		ImageURL:      imageURL,
		UserIngs:      userIngs,
		Substitutions: subs,
	}
}
