package api

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/pantrypal/backend/internal/history"
	"github.com/pageza/pantrypal/backend/internal/types"
	"github.com/pageza/pantrypal/backend/internal/workflow"
)

// RecipeHandler exposes the recipe lifecycle over HTTP. The server hosts a
// single user session; the mutex serializes every action so each one runs
// to completion before the next is accepted.
type RecipeHandler struct {
	workflow *workflow.Workflow
	store    history.Store
	logger   *zap.Logger

	mu      sync.Mutex
	session workflow.Session
}

// NewRecipeHandler creates a new RecipeHandler instance
func NewRecipeHandler(wf *workflow.Workflow, store history.Store, logger *zap.Logger) *RecipeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeHandler{workflow: wf, store: store, logger: logger}
}

// RegisterRoutes registers the recipe lifecycle routes
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.POST("/generate", h.Generate)
		recipes.POST("/surprise", h.Surprise)
		recipes.POST("/confirm", h.ConfirmImage)
		recipes.POST("/reset", h.Reset)
		recipes.GET("/session", h.GetSession)
	}
}

// GenerateRequest is the payload for a staged generation.
type GenerateRequest struct {
	Ingredients  []string `json:"ingredients"`
	Restrictions []string `json:"restrictions"`
	Servings     int      `json:"servings"`
}

// ConfirmRequest selects one of the staged image options.
type ConfirmRequest struct {
	ImageIndex int `json:"image_index"`
}

// Generate stages a draft recipe from the user's ingredients.
func (h *RecipeHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Servings <= 0 {
		req.Servings = 2
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	next, err := h.workflow.Generate(c.Request.Context(), h.session, req.Ingredients, req.Restrictions, req.Servings)
	if err != nil {
		h.renderWorkflowError(c, err)
		return
	}
	h.session = next
	c.JSON(http.StatusOK, sessionView(next))
}

// Surprise stages a draft with no ingredient constraints.
func (h *RecipeHandler) Surprise(c *gin.Context) {
	// The body is optional for surprise requests; only restrictions and
	// servings are honored if present.
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = GenerateRequest{}
	}
	if req.Servings <= 0 {
		req.Servings = 2
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	next, err := h.workflow.Surprise(c.Request.Context(), h.session, req.Restrictions, req.Servings)
	if err != nil {
		h.renderWorkflowError(c, err)
		return
	}
	h.session = next
	c.JSON(http.StatusOK, sessionView(next))
}

// ConfirmImage finalizes the staged draft with the chosen hero image.
func (h *RecipeHandler) ConfirmImage(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	next, err := h.workflow.ConfirmImage(c.Request.Context(), h.session, req.ImageIndex)
	if err != nil {
		h.renderWorkflowError(c, err)
		return
	}
	h.session = next
	c.JSON(http.StatusOK, sessionView(next))
}

// Reset discards the draft and current entry without touching history.
func (h *RecipeHandler) Reset(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.session = h.workflow.Reset(h.session)
	c.JSON(http.StatusOK, sessionView(h.session))
}

// GetSession reports the current lifecycle state.
func (h *RecipeHandler) GetSession(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.JSON(http.StatusOK, sessionView(h.session))
}

// DeleteEntry removes one history entry; absent ids are a no-op.
func (h *RecipeHandler) DeleteEntry(c *gin.Context) {
	id := c.Param("id")

	h.mu.Lock()
	defer h.mu.Unlock()

	next, err := h.workflow.DeleteEntry(c.Request.Context(), h.session, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete entry"})
		return
	}
	h.session = next
	c.Status(http.StatusNoContent)
}

// ClearHistory empties the store and resets the session.
func (h *RecipeHandler) ClearHistory(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next, err := h.workflow.ClearHistory(c.Request.Context(), h.session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history"})
		return
	}
	h.session = next
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) renderWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrNoIngredients):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrBadImageIndex), errors.Is(err, workflow.ErrNoDraft):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrAIUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("workflow action failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

// sessionView shapes the session for JSON responses.
func sessionView(s workflow.Session) gin.H {
	view := gin.H{"state": s.State.String()}
	if s.Draft != nil {
		view["draft"] = s.Draft
	}
	if s.Current != nil {
		view["current"] = s.Current
	}
	return view
}

// historyView renders entries newest-first, the order the history screen
// has always shown them.
func historyView(entries []types.Entry) []types.Entry {
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}
