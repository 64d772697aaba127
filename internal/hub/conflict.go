package hub

import "cookmode/internal/domain"

// ConflictKind classifies what was found when entering cooking mode.
type ConflictKind int

const (
	// ConflictOtherRecipe — the countdown engine is running timers that
	// belong to a different recipe.
	ConflictOtherRecipe ConflictKind = iota
	// ConflictUntrackedTimers — the engine is running timers for the
	// requested recipe, but this hub isn't tracking them (a previous
	// session left them running headless).
	ConflictUntrackedTimers
)

func (k ConflictKind) String() string {
	switch k {
	case ConflictOtherRecipe:
		return "other-recipe"
	case ConflictUntrackedTimers:
		return "untracked-timers"
	default:
		return "unknown"
	}
}

// Conflict describes a cooking-mode entry that needs a caller decision
// before the hub can proceed. The hub state is untouched until one of
// the Resolve methods is called.
type Conflict struct {
	Kind ConflictKind

	// OtherRecipeID is set for ConflictOtherRecipe: the recipe that
	// owns the running timers.
	OtherRecipeID string

	// Timers holds the engine's active timers at detection time.
	Timers []domain.TimerState
}
