// Package bridge decouples the orchestration hub from the countdown
// engine's binding mechanics. Commands are fire-and-forget; queries are
// answered from an engine snapshot and degrade to safe defaults when
// the bridge is not bound. Callers must treat "not bound" and
// "genuinely no timers" identically.
package bridge

import (
	"sync"

	"cookmode/internal/domain"
	"cookmode/internal/logger"
	"cookmode/internal/timer"
)

// Bridge is the command-and-query surface between the hub and the
// countdown engine.
type Bridge interface {
	// Fire-and-forget commands. Accepted immediately; the effect
	// happens asynchronously inside the engine. Dropped when unbound.
	StartTimer(t domain.TimerState)
	PauseTimer(id string)
	ResumeTimer(id string, t domain.TimerState)
	StopTimer(id string)
	StopAllAndCleanup(stepIndices []int)

	// Synchronous queries answered from an engine snapshot. Safe
	// defaults (false, "", nil) when unbound.
	HasActiveTimersForRecipe(recipeID string) bool
	HasAnyActiveTimers() bool
	ActiveTimersRecipeID() string
	ActiveTimersForRecipe(recipeID string) []domain.TimerState

	// Bind attaches to the engine and returns its event stream.
	// Unbind detaches without stopping any timers: countdowns are
	// designed to keep running headless.
	Bind() <-chan timer.Event
	Unbind()
	Bound() bool
}

// Compile-time interface check.
var _ Bridge = (*ServiceBridge)(nil)

// ServiceBridge is the concrete bridge over an in-process engine.
// Methods may be called from any goroutine; the bound/unbound flag is
// the only mutable state and the engine serializes everything else.
type ServiceBridge struct {
	eng *timer.Engine
	log *logger.Logger

	mu     sync.Mutex
	events chan timer.Event // nil when unbound
}

// New creates a bridge over the given engine, initially unbound.
func New(eng *timer.Engine, log *logger.Logger) *ServiceBridge {
	return &ServiceBridge{eng: eng, log: log}
}

// Bind subscribes to the engine event stream. Idempotent: a second
// Bind returns the existing stream.
func (b *ServiceBridge) Bind() <-chan timer.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.events != nil {
		return b.events
	}
	b.events = b.eng.Subscribe()
	b.log.Debug("bridge bound")
	return b.events
}

// Unbind detaches from the engine. Timers keep running.
func (b *ServiceBridge) Unbind() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.events == nil {
		return
	}
	b.eng.Unsubscribe(b.events)
	b.events = nil
	b.log.Debug("bridge unbound (timers keep running)")
}

// Bound reports whether the bridge is attached to the engine.
func (b *ServiceBridge) Bound() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.events != nil
}

// ── Commands ─────────────────────────────────────────────────────

func (b *ServiceBridge) StartTimer(t domain.TimerState) {
	if !b.Bound() {
		b.log.Debug("bridge unbound, dropping start for timer %s", t.ID)
		return
	}
	b.eng.StartTimer(t)
}

func (b *ServiceBridge) PauseTimer(id string) {
	if !b.Bound() {
		b.log.Debug("bridge unbound, dropping pause for timer %s", id)
		return
	}
	b.eng.PauseTimer(id)
}

func (b *ServiceBridge) ResumeTimer(id string, t domain.TimerState) {
	if !b.Bound() {
		b.log.Debug("bridge unbound, dropping resume for timer %s", id)
		return
	}
	b.eng.ResumeTimer(id, t)
}

func (b *ServiceBridge) StopTimer(id string) {
	if !b.Bound() {
		b.log.Debug("bridge unbound, dropping stop for timer %s", id)
		return
	}
	b.eng.StopTimer(id)
}

func (b *ServiceBridge) StopAllAndCleanup(stepIndices []int) {
	if !b.Bound() {
		b.log.Debug("bridge unbound, dropping stop-all")
		return
	}
	b.eng.StopAllAndCleanup(stepIndices)
}

// ── Queries ──────────────────────────────────────────────────────

func (b *ServiceBridge) HasActiveTimersForRecipe(recipeID string) bool {
	return len(b.ActiveTimersForRecipe(recipeID)) > 0
}

func (b *ServiceBridge) HasAnyActiveTimers() bool {
	if !b.Bound() {
		return false
	}
	for _, t := range b.eng.Snapshot() {
		if t.Active() {
			return true
		}
	}
	return false
}

// ActiveTimersRecipeID returns the recipe owning the active timers, or
// "" when there are none. Active timers belong to at most one recipe.
func (b *ServiceBridge) ActiveTimersRecipeID() string {
	if !b.Bound() {
		return ""
	}
	for _, t := range b.eng.Snapshot() {
		if t.Active() {
			return t.RecipeID
		}
	}
	return ""
}

func (b *ServiceBridge) ActiveTimersForRecipe(recipeID string) []domain.TimerState {
	if !b.Bound() {
		return nil
	}
	var out []domain.TimerState
	for _, t := range b.eng.Snapshot() {
		if t.Active() && t.RecipeID == recipeID {
			out = append(out, t)
		}
	}
	return out
}
