package workflow

import "errors"

var (
	// ErrAIUnavailable means no AI service is configured; generation is
	// disabled rather than failing on every later call.
	ErrAIUnavailable = errors.New("AI service is not configured")

	// ErrNoIngredients is the validation error for a non-surprise
	// generate with an empty ingredient list. No state changes and no
	// external call is made.
	ErrNoIngredients = errors.New("at least one ingredient is required")

	// ErrNoDraft means an image confirmation arrived with no draft
	// staged.
	ErrNoDraft = errors.New("no draft recipe awaiting confirmation")

	// ErrBadImageIndex means the confirmed index does not address one of
	// the staged image options.
	ErrBadImageIndex = errors.New("image index out of range")
)
