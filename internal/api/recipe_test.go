package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/pantrypal/backend/internal/history"
	"github.com/pageza/pantrypal/backend/internal/mocks"
	"github.com/pageza/pantrypal/backend/internal/service"
	"github.com/pageza/pantrypal/backend/internal/types"
	"github.com/pageza/pantrypal/backend/internal/workflow"
)

func setupTestRouter(t *testing.T, ai *mocks.AIService, images *mocks.ImageService) (*gin.Engine, history.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := history.NewFileStore(filepath.Join(t.TempDir(), "history.json"), nil)
	require.NoError(t, err)

	wf := workflow.New(aiOrNil(ai), imagesOrNil(images), store, nil)
	handler := NewRecipeHandler(wf, store, nil)

	router := gin.New()
	v1 := router.Group("/api/v1")
	handler.RegisterRoutes(v1)
	handler.RegisterHistoryRoutes(v1)
	return router, store
}

// aiOrNil avoids handing the workflow a typed-nil interface value.
func aiOrNil(m *mocks.AIService) service.AIService {
	if m == nil {
		return nil
	}
	return m
}

func imagesOrNil(m *mocks.ImageService) service.ImageService {
	if m == nil {
		return nil
	}
	return m
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
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

func TestGenerateEndpoint(t *testing.T) {
	t.Run("should stage a draft", func(t *testing.T) {
		ai := &mocks.AIService{Recipe: testRecipe()}
		images := &mocks.ImageService{URLs: []string{"http://img/1", "http://img/2"}}
		router, _ := setupTestRouter(t, ai, images)

		w := doJSON(t, router, http.MethodPost, "/api/v1/recipes/generate", GenerateRequest{
			Ingredients: []string{"chicken", "rice"},
			Servings:    2,
		})

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			State string      `json:"state"`
			Draft types.Draft `json:"draft"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "drafting", resp.State)
		assert.Equal(t, "Chicken Rice Bowl", resp.Draft.Recipe.Name)
		assert.Len(t, resp.Draft.ImageOptions, 2)
	})

	t.Run("should return 400 for empty ingredients", func(t *testing.T) {
		ai := &mocks.AIService{Recipe: testRecipe()}
		router, _ := setupTestRouter(t, ai, nil)

		w := doJSON(t, router, http.MethodPost, "/api/v1/recipes/generate", GenerateRequest{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, ai.GenerateCalls)
	})

	t.Run("should return 503 when AI is not configured", func(t *testing.T) {
		router, _ := setupTestRouter(t, nil, nil)

		w := doJSON(t, router, http.MethodPost, "/api/v1/recipes/generate", GenerateRequest{
			Ingredients: []string{"chicken"},
		})

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestSurpriseEndpoint(t *testing.T) {
	t.Run("should stage a draft without ingredients", func(t *testing.T) {
		ai := &mocks.AIService{Recipe: types.Recipe{Name: "Mystery Stew"}}
		router, _ := setupTestRouter(t, ai, nil)

		w := doJSON(t, router, http.MethodPost, "/api/v1/recipes/surprise", nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, ai.GenerateCalls, 1)
		assert.Empty(t, ai.GenerateCalls[0])
	})
}

func TestConfirmEndpoint(t *testing.T) {
	t.Run("full lifecycle over HTTP", func(t *testing.T) {
		ai := &mocks.AIService{
			Recipe:        testRecipe(),
			Substitutions: map[string][]string{"lime": {"lemon", "vinegar"}},
		}
		images := &mocks.ImageService{URLs: []string{"http://img/1", "http://img/2"}}
		router, store := setupTestRouter(t, ai, images)

		w := doJSON(t, router, http.MethodPost, "/api/v1/recipes/generate", GenerateRequest{
			Ingredients: []string{"chicken", "rice"},
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodPost, "/api/v1/recipes/confirm", ConfirmRequest{ImageIndex: 0})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			State   string      `json:"state"`
			Current types.Entry `json:"current"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "finalized", resp.State)
		assert.Equal(t, "http://img/1", resp.Current.ImageURL)
		assert.Equal(t, map[string][]string{"lime": {"lemon", "vinegar"}}, resp.Current.Substitutions)

		entries, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("should return 409 without a staged draft", func(t *testing.T) {
		router, _ := setupTestRouter(t, nil, nil)

		w := doJSON(t, router, http.MethodPost, "/api/v1/recipes/confirm", ConfirmRequest{ImageIndex: 0})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHistoryEndpoints(t *testing.T) {
	ai := &mocks.AIService{Recipe: testRecipe()}
	router, store := setupTestRouter(t, ai, nil)

	// Finalize two entries (no image options staged, index ignored)
	for i := 0; i < 2; i++ {
		w := doJSON(t, router, http.MethodPost, "/api/v1/recipes/generate", GenerateRequest{
			Ingredients: []string{"chicken", "lime"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		w = doJSON(t, router, http.MethodPost, "/api/v1/recipes/confirm", ConfirmRequest{})
		require.Equal(t, http.StatusOK, w.Code)
	}

	t.Run("should list entries newest first", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/history", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			History []types.Entry `json:"history"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.History, 2)

		stored, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, stored[1].ID, resp.History[0].ID)
		assert.Equal(t, stored[0].ID, resp.History[1].ID)
	})

	t.Run("should delete one entry by id", func(t *testing.T) {
		stored, err := store.Load(context.Background())
		require.NoError(t, err)
		require.Len(t, stored, 2)

		w := doJSON(t, router, http.MethodDelete, "/api/v1/history/"+stored[0].ID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		remaining, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
	})

	t.Run("should clear all history", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/api/v1/history", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		remaining, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})
}

func TestAnalyticsEndpoint(t *testing.T) {
	t.Run("should report empty aggregates for empty history", func(t *testing.T) {
		router, _ := setupTestRouter(t, nil, nil)

		w := doJSON(t, router, http.MethodGet, "/api/v1/analytics", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Entries int `json:"entries"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Zero(t, resp.Entries)
	})

	t.Run("should aggregate finalized entries", func(t *testing.T) {
		ai := &mocks.AIService{Recipe: testRecipe()}
		router, _ := setupTestRouter(t, ai, nil)

		w := doJSON(t, router, http.MethodPost, "/api/v1/recipes/generate", GenerateRequest{
			Ingredients: []string{"chicken", "lime"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		w = doJSON(t, router, http.MethodPost, "/api/v1/recipes/confirm", ConfirmRequest{})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodGet, "/api/v1/analytics", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Entries   int `json:"entries"`
			Nutrition []struct {
				Metric string  `json:"metric"`
				Value  float64 `json:"value"`
			} `json:"nutrition"`
			TopIngredients []struct {
				Ingredient string `json:"ingredient"`
				Count      int    `json:"count"`
			} `json:"top_ingredients"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Entries)
		require.Len(t, resp.Nutrition, 1)
		assert.Equal(t, 450.0, resp.Nutrition[0].Value)
		assert.Len(t, resp.TopIngredients, 2)
	})
}
