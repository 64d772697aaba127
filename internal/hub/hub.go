// Package hub orchestrates cooking mode: the active recipe, the current
// step, the authoritative step→timer map, voice-command dispatch, and
// cross-recipe conflict resolution. The hub owns what the user sees;
// the countdown engine owns what actually ticks.
package hub

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cookmode/internal/bridge"
	"cookmode/internal/domain"
	"cookmode/internal/logger"
	"cookmode/internal/speech"
	"cookmode/internal/timer"
)

// defaultGrace is how long a cancelled timer stays visible in the hub
// map before removal, so the UI can show the cancelled state briefly.
const defaultGrace = 2 * time.Second

// Option configures the Hub.
type Option func(*Hub)

// WithCancelGrace sets the cancelled-timer removal delay.
func WithCancelGrace(d time.Duration) Option {
	return func(h *Hub) { h.grace = d }
}

// Hub is the cooking-mode orchestrator. All methods are safe for
// concurrent use.
type Hub struct {
	recipes domain.RecipeSource
	bridge  bridge.Bridge
	speaker domain.Speaker
	log     *logger.Logger
	grace   time.Duration

	mu        sync.Mutex
	recipe    *domain.Recipe
	stepIndex int
	// timers is the single source of UI truth: at most one entry per
	// step index, updated from engine events and hub commands.
	timers map[int]domain.TimerState
}

// New creates a hub over the given collaborators.
func New(recipes domain.RecipeSource, b bridge.Bridge, speaker domain.Speaker, log *logger.Logger, opts ...Option) *Hub {
	h := &Hub{
		recipes: recipes,
		bridge:  b,
		speaker: speaker,
		log:     log,
		grace:   defaultGrace,
		timers:  make(map[int]domain.TimerState),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run binds the bridge and consumes engine events until ctx is
// cancelled. Call in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	events := h.bridge.Bind()
	for {
		select {
		case <-ctx.Done():
			h.bridge.Unbind()
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.handleEvent(ctx, ev)
		}
	}
}

// handleEvent folds an engine event into the hub map. Events carrying
// an id the hub doesn't track (late ticks from replaced timers, other
// sessions' timers) are ignored.
func (h *Hub) handleEvent(ctx context.Context, ev timer.Event) {
	switch e := ev.(type) {
	case timer.TickEvent:
		h.mu.Lock()
		if cur, ok := h.timers[e.State.StepIndex]; ok && cur.ID == e.State.ID {
			h.timers[e.State.StepIndex] = e.State
		}
		h.mu.Unlock()

	case timer.FinishedEvent:
		h.mu.Lock()
		cur, ok := h.timers[e.State.StepIndex]
		tracked := ok && cur.ID == e.State.ID
		if tracked {
			h.timers[e.State.StepIndex] = e.State
		}
		h.mu.Unlock()
		if tracked {
			h.speaker.TimerFinished(ctx, e.State)
		}

	case timer.ClearedEvent:
		// Bulk clears originate from this hub's own exit path; nothing
		// further to fold in.
		h.log.Debug("hub: engine cleared steps %v", e.StepIndices)
	}
}

// ── Cooking-mode entry ───────────────────────────────────────────

// EnterCookingMode makes recipeID the active recipe. Three cases:
//
//  1. The engine runs timers for a DIFFERENT recipe — a Conflict is
//     returned and the hub is untouched until the caller resolves it.
//  2. The engine runs timers for THIS recipe that the hub doesn't
//     track — likewise a Conflict.
//  3. The hub already tracks this recipe — silent resync from the
//     engine snapshot, navigating to the step closest to finishing.
//
// With no timers in play it's a plain entry at step 0.
func (h *Hub) EnterCookingMode(ctx context.Context, recipeID string) (*Conflict, error) {
	r, err := h.recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("enter cooking mode: %w", err)
	}

	if other := h.bridge.ActiveTimersRecipeID(); other != "" && other != recipeID {
		h.log.Info("hub: entry blocked, timers active for recipe %s", other)
		return &Conflict{
			Kind:          ConflictOtherRecipe,
			OtherRecipeID: other,
			Timers:        h.bridge.ActiveTimersForRecipe(other),
		}, nil
	}

	if h.bridge.HasActiveTimersForRecipe(recipeID) {
		h.mu.Lock()
		tracking := h.recipe != nil && h.recipe.ID == recipeID
		h.mu.Unlock()

		if !tracking {
			h.log.Info("hub: untracked timers found for recipe %s", recipeID)
			return &Conflict{
				Kind:   ConflictUntrackedTimers,
				Timers: h.bridge.ActiveTimersForRecipe(recipeID),
			}, nil
		}

		// Case 3: already ours. Resync and follow the hottest timer.
		h.resyncFromEngine(r)
		return nil, nil
	}

	h.enterFresh(r)
	return nil, nil
}

// ResolveStopAndStart answers a ConflictOtherRecipe: kill the other
// recipe's timers and enter fresh.
func (h *Hub) ResolveStopAndStart(ctx context.Context, c *Conflict, recipeID string) error {
	steps := stepIndices(c.Timers)
	h.bridge.StopAllAndCleanup(steps)
	h.log.Info("hub: stopped %d timer(s) for recipe %s", len(c.Timers), c.OtherRecipeID)

	r, err := h.recipes.Get(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("resolve stop-and-start: %w", err)
	}
	h.enterFresh(r)
	return nil
}

// ResolveKeepExisting answers a ConflictOtherRecipe by backing out:
// the other recipe's timers keep running and cooking mode is not
// entered.
func (h *Hub) ResolveKeepExisting(c *Conflict) {
	h.log.Info("hub: entry abandoned, keeping timers for recipe %s", c.OtherRecipeID)
}

// ResolveResumeTracking answers a ConflictUntrackedTimers: adopt the
// running timers and navigate to the step closest to finishing.
func (h *Hub) ResolveResumeTracking(ctx context.Context, recipeID string) error {
	r, err := h.recipes.Get(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("resolve resume-tracking: %w", err)
	}
	h.resyncFromEngine(r)
	h.log.Info("hub: resumed tracking %d timer(s) for recipe %s", len(h.Timers()), recipeID)
	return nil
}

// ResolveDiscard answers a ConflictUntrackedTimers: stop the orphaned
// timers and enter fresh at step 0.
func (h *Hub) ResolveDiscard(ctx context.Context, c *Conflict, recipeID string) error {
	h.bridge.StopAllAndCleanup(stepIndices(c.Timers))

	r, err := h.recipes.Get(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("resolve discard: %w", err)
	}
	h.enterFresh(r)
	return nil
}

// OpenAtStep enters cooking mode directly at a step — the deep-link
// entry point used by notification taps and feed clients. Conflicts
// surface the same way as EnterCookingMode.
func (h *Hub) OpenAtStep(ctx context.Context, recipeID string, stepIndex int) (*Conflict, error) {
	c, err := h.EnterCookingMode(ctx, recipeID)
	if err != nil || c != nil {
		return c, err
	}

	h.mu.Lock()
	if h.recipe != nil && stepIndex >= 0 && stepIndex < len(h.recipe.Steps) {
		h.stepIndex = stepIndex
	}
	h.mu.Unlock()
	return nil, nil
}

// ExitCookingMode stops every tracked timer, clears alarm notices for
// their steps, and resets the hub. Safe to call when nothing is active.
func (h *Hub) ExitCookingMode() {
	h.mu.Lock()
	var steps []int
	for idx := range h.timers {
		steps = append(steps, idx)
	}
	h.recipe = nil
	h.stepIndex = 0
	h.timers = make(map[int]domain.TimerState)
	h.mu.Unlock()

	if len(steps) > 0 {
		sort.Ints(steps)
		h.bridge.StopAllAndCleanup(steps)
	}
	h.log.Info("hub: exited cooking mode (%d timer(s) stopped)", len(steps))
}

func (h *Hub) enterFresh(r *domain.Recipe) {
	h.mu.Lock()
	h.recipe = r
	h.stepIndex = 0
	h.timers = make(map[int]domain.TimerState)
	h.mu.Unlock()
	h.log.Info("hub: entered cooking mode for %s", r.ID)
}

// resyncFromEngine rebuilds the timer map from the engine snapshot and
// moves the current step to the timer closest to finishing.
func (h *Hub) resyncFromEngine(r *domain.Recipe) {
	active := h.bridge.ActiveTimersForRecipe(r.ID)

	h.mu.Lock()
	h.recipe = r
	h.timers = make(map[int]domain.TimerState, len(active))
	for _, t := range active {
		h.timers[t.StepIndex] = t
	}
	if hot, ok := hottest(active); ok && hot.StepIndex < len(r.Steps) {
		h.stepIndex = hot.StepIndex
	} else if h.stepIndex >= len(r.Steps) {
		h.stepIndex = 0
	}
	h.mu.Unlock()
}

// ── Voice dispatch ───────────────────────────────────────────────

// ProcessVoiceCommand dispatches one recognized command against the
// current session. Each branch follows guard-then-act-then-speak: a
// refused timer command is always spoken, a navigation no-op at the
// boundary is always silent, and nothing here ever panics on a
// mismatched state.
func (h *Hub) ProcessVoiceCommand(ctx context.Context, cmd domain.VoiceCommand) error {
	h.mu.Lock()
	r := h.recipe
	idx := h.stepIndex
	h.mu.Unlock()

	if r == nil {
		return domain.ErrNoActiveRecipe
	}
	total := len(r.Steps)
	step := r.Steps[idx]

	switch cmd {
	case domain.CmdNext:
		if idx+1 >= total {
			h.log.Debug("hub: NEXT at last step, ignoring")
			return nil
		}
		h.setStep(idx + 1)
		return h.speaker.Instruction(ctx, r.Steps[idx+1], total)

	case domain.CmdPrevious:
		if idx == 0 {
			h.log.Debug("hub: PREVIOUS at first step, ignoring")
			return nil
		}
		h.setStep(idx - 1)
		return h.speaker.Instruction(ctx, r.Steps[idx-1], total)

	case domain.CmdStart:
		h.setStep(0)
		return h.speaker.Instruction(ctx, r.Steps[0], total)

	case domain.CmdRepeat:
		return h.speaker.Instruction(ctx, step, total)

	case domain.CmdIngredients:
		if len(step.Ingredients) > 0 {
			return h.speaker.Ingredients(ctx, step.Ingredients)
		}
		if len(r.Ingredients) > 0 {
			return h.speaker.Ingredients(ctx, r.Ingredients)
		}
		return nil

	case domain.CmdDescription:
		return h.speaker.Message(ctx, speech.LineDescription(r))

	case domain.CmdTime:
		if !step.Timed() {
			return nil
		}
		return h.speaker.Duration(ctx, step.Duration)

	case domain.CmdTips:
		if len(step.Tips) == 0 {
			return nil
		}
		return h.speaker.Tips(ctx, step.Tips)

	case domain.CmdStepNumber:
		return h.speaker.StepNumber(ctx, idx+1, total)

	case domain.CmdStartTimer:
		return h.startTimer(ctx, r, idx, step)

	case domain.CmdPauseTimer:
		return h.pauseTimer(ctx, idx)

	case domain.CmdResumeTimer:
		return h.resumeTimer(ctx, idx)

	case domain.CmdStopTimer:
		return h.stopTimer(ctx, idx)

	case domain.CmdCheckTimer:
		return h.checkTimer(ctx, idx)

	default:
		h.log.Debug("hub: unknown command, ignoring")
		return nil
	}
}

// ── Timer commands ───────────────────────────────────────────────

func (h *Hub) startTimer(ctx context.Context, r *domain.Recipe, idx int, step domain.Step) error {
	if !step.Timed() {
		return h.speaker.Message(ctx, speech.LineStepHasNoDuration())
	}

	h.mu.Lock()
	if cur, ok := h.timers[idx]; ok && cur.Active() {
		h.mu.Unlock()
		return h.speaker.Message(ctx, speech.LineTimerAlreadyRunning())
	}
	t := domain.TimerState{
		ID:        uuid.NewString(),
		RecipeID:  r.ID,
		StepIndex: idx,
		Duration:  step.Duration,
		Remaining: step.Duration,
		Status:    domain.TimerRunning,
		StartedAt: time.Now(),
	}
	h.timers[idx] = t
	h.mu.Unlock()

	h.bridge.StartTimer(t)
	return h.speaker.TimerStarted(ctx, t)
}

func (h *Hub) pauseTimer(ctx context.Context, idx int) error {
	h.mu.Lock()
	t, ok := h.timers[idx]
	if !ok || t.Status != domain.TimerRunning {
		h.mu.Unlock()
		return h.speaker.Message(ctx, speech.LineNoTimerToPause())
	}
	t.Status = domain.TimerPaused
	t.PausedAt = time.Now()
	h.timers[idx] = t
	h.mu.Unlock()

	h.bridge.PauseTimer(t.ID)
	return h.speaker.TimerPaused(ctx, t)
}

func (h *Hub) resumeTimer(ctx context.Context, idx int) error {
	h.mu.Lock()
	t, ok := h.timers[idx]
	if !ok || t.Status != domain.TimerPaused {
		h.mu.Unlock()
		return h.speaker.Message(ctx, speech.LineNoTimerToResume())
	}
	t.Status = domain.TimerRunning
	h.timers[idx] = t
	h.mu.Unlock()

	// The hub's frozen remaining is the source of truth after a pause.
	h.bridge.ResumeTimer(t.ID, t)
	return h.speaker.TimerResumed(ctx, t)
}

func (h *Hub) stopTimer(ctx context.Context, idx int) error {
	h.mu.Lock()
	t, ok := h.timers[idx]
	if !ok || t.Status != domain.TimerRunning {
		h.mu.Unlock()
		return h.speaker.Message(ctx, speech.LineNoTimerToStop())
	}
	t.Status = domain.TimerCancelled
	h.timers[idx] = t
	h.mu.Unlock()

	h.bridge.StopTimer(t.ID)

	// Keep the cancelled state visible briefly, then drop it — unless
	// a new timer has taken the slot in the meantime.
	id := t.ID
	time.AfterFunc(h.grace, func() {
		h.mu.Lock()
		if cur, ok := h.timers[idx]; ok && cur.ID == id && cur.Status == domain.TimerCancelled {
			delete(h.timers, idx)
		}
		h.mu.Unlock()
	})

	return h.speaker.TimerCancelled(ctx, t)
}

func (h *Hub) checkTimer(ctx context.Context, idx int) error {
	h.mu.Lock()
	t, ok := h.timers[idx]
	h.mu.Unlock()

	if !ok || !t.Active() {
		return h.speaker.Message(ctx, speech.LineNoTimerToCheck())
	}
	return h.speaker.TimerRemaining(ctx, t)
}

// ── Read accessors ───────────────────────────────────────────────

// CurrentRecipe returns the active recipe, or nil outside cooking mode.
func (h *Hub) CurrentRecipe() *domain.Recipe {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.recipe
}

// CurrentStep returns the zero-based step index.
func (h *Hub) CurrentStep() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stepIndex
}

// Timers returns a copy of the tracked timers sorted by step index.
func (h *Hub) Timers() []domain.TimerState {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.TimerState, 0, len(h.timers))
	for _, t := range h.timers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StepIndex < out[j].StepIndex })
	return out
}

func (h *Hub) setStep(idx int) {
	h.mu.Lock()
	h.stepIndex = idx
	h.mu.Unlock()
}

// ── Helpers ──────────────────────────────────────────────────────

func stepIndices(timers []domain.TimerState) []int {
	steps := make([]int, 0, len(timers))
	for _, t := range timers {
		steps = append(steps, t.StepIndex)
	}
	sort.Ints(steps)
	return steps
}

// hottest returns the timer with the lowest remaining time. Ties go to
// the first encountered.
func hottest(timers []domain.TimerState) (domain.TimerState, bool) {
	if len(timers) == 0 {
		return domain.TimerState{}, false
	}
	best := timers[0]
	for _, t := range timers[1:] {
		if t.Remaining < best.Remaining {
			best = t
		}
	}
	return best, true
}
