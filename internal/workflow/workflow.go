// Package workflow drives the staged recipe lifecycle: generation stages a
// draft, the user confirms a hero image, and confirmation finalizes the
// draft into the history store. Session state is passed in and returned
// explicitly so every transition is testable without a live UI session.
package workflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/pantrypal/backend/internal/history"
	"github.com/pageza/pantrypal/backend/internal/normalize"
	"github.com/pageza/pantrypal/backend/internal/service"
	"github.com/pageza/pantrypal/backend/internal/types"
)

// State identifies where the session is in the recipe lifecycle.
type State int

const (
	// StateIdle: no draft, no current entry.
	StateIdle State = iota
	// StateDrafting: a draft is staged, waiting for image confirmation.
	StateDrafting
	// StateFinalized: an entry was written and is available as current.
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrafting:
		return "drafting"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the explicit workflow state threaded through operations. The
// zero value is a valid idle session.
type Session struct {
	State   State
	Draft   *types.Draft
	Current *types.Entry
}

// Workflow owns the generation transitions. It holds at most one draft per
// session, and the history store is its only side-effect channel.
type Workflow struct {
	ai     service.AIService
	images service.ImageService
	store  history.Store
	logger *zap.Logger
}

// maxImageOptions bounds how many hero image candidates are staged.
const maxImageOptions = 5

// New creates a workflow. The AI service may be nil when unconfigured;
// generation then reports ErrAIUnavailable. The image service may be nil as
// well, in which case recipes finalize immediately without a hero image.
func New(ai service.AIService, images service.ImageService, store history.Store, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{ai: ai, images: images, store: store, logger: logger}
}

// Generate runs the Idle→Drafting transition for user-supplied ingredients.
// On any failure the returned session equals the input session: no partial
// draft survives a failed external call.
func (w *Workflow) Generate(ctx context.Context, s Session, userIngs, restrictions []string, servings int) (Session, error) {
	if w.ai == nil {
		return s, ErrAIUnavailable
	}
	if len(userIngs) == 0 {
		return s, ErrNoIngredients
	}
	return w.stage(ctx, s, userIngs, restrictions, servings)
}

// Surprise runs the Idle→Drafting transition with no ingredients. The AI
// service varies its own prompt randomization, so repeated surprise calls
// produce different recipes; the empty ingredient list must never trip the
// validation path.
func (w *Workflow) Surprise(ctx context.Context, s Session, restrictions []string, servings int) (Session, error) {
	if w.ai == nil {
		return s, ErrAIUnavailable
	}
	return w.stage(ctx, s, []string{}, restrictions, servings)
}

func (w *Workflow) stage(ctx context.Context, s Session, userIngs, restrictions []string, servings int) (Session, error) {
	recipe, err := w.ai.GenerateRecipe(ctx, userIngs, restrictions, servings)
	if err != nil {
		return s, fmt.Errorf("recipe generation failed: %w", err)
	}

	recipeIngs := normalize.Ingredients(recipe.Ingredients)

	var images []string
	if w.images != nil {
		images = w.images.FetchImages(ctx, recipe.Name, maxImageOptions)
		if len(images) > maxImageOptions {
			images = images[:maxImageOptions]
		}
	}

	w.logger.Info("staged recipe draft",
		zap.String("name", recipe.Name),
		zap.Int("ingredients", len(recipeIngs)),
		zap.Int("image_options", len(images)))

	return Session{
		State: StateDrafting,
		Draft: &types.Draft{
			Recipe:       recipe,
			RecipeIngs:   recipeIngs,
			ImageOptions: images,
			UserIngs:     userIngs,
		},
	}, nil
}

// ConfirmImage runs the Drafting→Finalized transition. index selects one of
// the staged image options; it is ignored when no options were staged, in
// which case the entry finalizes with an empty image URL. Substitutions are
// looked up for recipe ingredients the user did not declare owning, then
// the entry is persisted and becomes current.
func (w *Workflow) ConfirmImage(ctx context.Context, s Session, index int) (Session, error) {
	if s.State != StateDrafting || s.Draft == nil {
		return s, ErrNoDraft
	}
	draft := s.Draft

	imageURL := ""
	if len(draft.ImageOptions) > 0 {
		if index < 0 || index >= len(draft.ImageOptions) {
			return s, ErrBadImageIndex
		}
		imageURL = draft.ImageOptions[index]
	}

	missing := missingIngredients(draft.RecipeIngs, draft.UserIngs)

	subs := map[string][]string{}
	if len(missing) > 0 && w.ai != nil {
		got, err := w.ai.GetSubstitutions(ctx, missing)
		if err != nil {
			// Substitutions are best-effort; the entry still finalizes.
			w.logger.Warn("substitution lookup failed", zap.Error(err))
		} else if got != nil {
			subs = got
		}
	}

	entry, err := w.store.Save(ctx, draft.Recipe, imageURL, draft.UserIngs, subs)
	if err != nil {
		return s, fmt.Errorf("failed to save recipe: %w", err)
	}

	// Reload so current reflects exactly what the store persisted.
	entries, err := w.store.Load(ctx)
	if err == nil && len(entries) > 0 {
		entry = entries[len(entries)-1]
	}

	w.logger.Info("finalized recipe",
		zap.String("id", entry.ID),
		zap.String("name", entry.Recipe.Name),
		zap.Int("substitutions", len(subs)))

	return Session{State: StateFinalized, Current: &entry}, nil
}

// Reset returns to idle from any state, discarding the draft and current
// entry without touching persisted history.
func (w *Workflow) Reset(s Session) Session {
	return Session{State: StateIdle}
}

// DeleteEntry removes one history entry. A missing id is a no-op. The
// session is untouched unless the deleted entry was current.
func (w *Workflow) DeleteEntry(ctx context.Context, s Session, id string) (Session, error) {
	if err := w.store.Delete(ctx, id); err != nil {
		return s, err
	}
	if s.Current != nil && s.Current.ID == id {
		return Session{State: StateIdle}, nil
	}
	return s, nil
}

// ClearHistory empties the store and resets the session.
func (w *Workflow) ClearHistory(ctx context.Context, s Session) (Session, error) {
	if err := w.store.Clear(ctx); err != nil {
		return s, err
	}
	return Session{State: StateIdle}, nil
}

// missingIngredients returns the recipe ingredient labels whose lowercase
// form is absent from the lowercase set of the user's ingredients. Matching
// is exact string comparison on the label, no fuzzy matching and no unit
// normalization.
func missingIngredients(recipeIngs, userIngs []string) []string {
	have := make(map[string]struct{}, len(userIngs))
	for _, u := range userIngs {
		have[strings.ToLower(u)] = struct{}{}
	}

	var missing []string
	for _, ing := range recipeIngs {
		if _, ok := have[strings.ToLower(ing)]; !ok {
			missing = append(missing, ing)
		}
	}
	return missing
}
