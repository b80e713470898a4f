package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/pantrypal/backend/internal/analytics"
)

// RegisterHistoryRoutes registers the history and analytics routes on the
// recipe handler; they share the same session lock.
func (h *RecipeHandler) RegisterHistoryRoutes(router *gin.RouterGroup) {
	hist := router.Group("/history")
	{
		hist.GET("", h.ListHistory)
		hist.DELETE("/:id", h.DeleteEntry)
		hist.DELETE("", h.ClearHistory)
	}
	router.GET("/analytics", h.Analytics)
}

// ListHistory returns all persisted entries, newest first.
func (h *RecipeHandler) ListHistory(c *gin.Context) {
	entries, err := h.store.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": historyView(entries)})
}

// Analytics recomputes the three history aggregates. Each tolerates empty
// or partial data and reports empty results rather than failing.
func (h *RecipeHandler) Analytics(c *gin.Context) {
	entries, err := h.store.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	nutrition := analytics.NutritionDistribution(entries)
	volume := analytics.VolumeOverTime(entries)
	top := analytics.TopIngredients(entries, 10)

	c.JSON(http.StatusOK, gin.H{
		"nutrition":       nutrition,
		"volume":          volume,
		"top_ingredients": top,
		"entries":         len(entries),
	})
}
