package service

import (
	"context"

	"github.com/pageza/pantrypal/backend/internal/types"
)

// AIService defines the interface for recipe generation operations
type AIService interface {
	// GenerateRecipe produces a full recipe for the given ingredients,
	// dietary restrictions, and serving count. An empty ingredient list
	// requests a surprise recipe.
	GenerateRecipe(ctx context.Context, ingredients, restrictions []string, servings int) (types.Recipe, error)

	// GetSubstitutions maps each missing ingredient to suggested
	// substitutes, two per ingredient in the happy path. It returns an
	// empty map rather than an error when the model output is unusable.
	GetSubstitutions(ctx context.Context, missing []string) (map[string][]string, error)
}

// ImageService defines the interface for hero image lookup
type ImageService interface {
	// FetchImages returns up to n candidate image URLs for the query.
	// Failures and missing configuration yield an empty slice.
	FetchImages(ctx context.Context, query string, n int) []string
}
