// Package mocks provides test doubles for the external generation services.
package mocks

import (
	"context"

	"github.com/pageza/pantrypal/backend/internal/types"
)

// AIService is a scriptable stand-in for the recipe generation service.
type AIService struct {
	Recipe        types.Recipe
	GenerateErr   error
	Substitutions map[string][]string
	SubsErr       error

	GenerateCalls [][]string
	SubsCalls     [][]string
}

func (m *AIService) GenerateRecipe(ctx context.Context, ingredients, restrictions []string, servings int) (types.Recipe, error) {
	m.GenerateCalls = append(m.GenerateCalls, ingredients)
	if m.GenerateErr != nil {
		return types.Recipe{}, m.GenerateErr
	}
	return m.Recipe, nil
}

func (m *AIService) GetSubstitutions(ctx context.Context, missing []string) (map[string][]string, error) {
	m.SubsCalls = append(m.SubsCalls, missing)
	if m.SubsErr != nil {
		return nil, m.SubsErr
	}
	if m.Substitutions == nil {
		return map[string][]string{}, nil
	}
	return m.Substitutions, nil
}

// ImageService returns a fixed set of image URLs.
type ImageService struct {
	URLs  []string
	Calls []string
}

func (m *ImageService) FetchImages(ctx context.Context, query string, n int) []string {
	m.Calls = append(m.Calls, query)
	if len(m.URLs) > n {
		return m.URLs[:n]
	}
	return m.URLs
}
