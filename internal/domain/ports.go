package domain

import (
	"context"
	"time"
)

// RecipeSource provides recipes. Implementations can be in-memory
// (hardcoded), file-based, or API-backed.
type RecipeSource interface {
	List(ctx context.Context) ([]RecipeSummary, error)
	Get(ctx context.Context, id string) (*Recipe, error)
	Search(ctx context.Context, query string) ([]RecipeSummary, error)
}

// Speaker is the text-to-speech callback surface consumed by the
// orchestration hub. Implementations render each event as a spoken
// line (or do nothing when speech is disabled). Speaking is queued,
// never blocking; errors are reported for logging only.
type Speaker interface {
	Instruction(ctx context.Context, step Step, total int) error
	Ingredients(ctx context.Context, items []Ingredient) error
	Duration(ctx context.Context, d time.Duration) error
	Tips(ctx context.Context, tips []string) error
	StepNumber(ctx context.Context, current, total int) error

	TimerStarted(ctx context.Context, t TimerState) error
	TimerPaused(ctx context.Context, t TimerState) error
	TimerResumed(ctx context.Context, t TimerState) error
	TimerCancelled(ctx context.Context, t TimerState) error
	TimerFinished(ctx context.Context, t TimerState) error
	TimerRemaining(ctx context.Context, t TimerState) error

	Message(ctx context.Context, text string) error
}

// Recognizer captures one utterance from the user and returns the
// recognized text. Implementations can be whisper-backed, scripted
// (tests), or keyboard-backed. Listen blocks until an utterance is
// available or ctx is cancelled.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Notifier delivers messages to the user. Implementations can write to
// the terminal, post desktop notifications, or feed remote clients.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
