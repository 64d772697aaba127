package domain

import (
	"fmt"
	"time"
)

// TimerStatus represents the state of a step timer.
type TimerStatus int

const (
	TimerRunning TimerStatus = iota
	TimerPaused
	TimerFinished
	TimerCancelled
)

// String returns a human-readable timer status.
func (t TimerStatus) String() string {
	switch t {
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	case TimerFinished:
		return "finished"
	case TimerCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TimerState describes one countdown. It is a value: the timer engine and
// the orchestration hub each hold their own copy and exchange updated
// copies through commands and events, never pointers.
type TimerState struct {
	ID        string // unique, assigned at creation, never reused
	RecipeID  string
	StepIndex int // 0-based index of the owning step

	Duration  time.Duration // fixed total, set once at creation
	Remaining time.Duration // non-increasing while running, frozen while paused

	Status    TimerStatus
	StartedAt time.Time
	PausedAt  time.Time
}

// Active reports whether the timer is still counting or could resume
// counting. Finished and cancelled timers are not active.
func (t TimerState) Active() bool {
	return t.Status == TimerRunning || t.Status == TimerPaused
}

// Clamped returns a copy with Remaining forced into [0, Duration].
func (t TimerState) Clamped() TimerState {
	if t.Remaining > t.Duration {
		t.Remaining = t.Duration
	}
	if t.Remaining < 0 {
		t.Remaining = 0
	}
	return t
}

// Clock formats a duration as m:ss for timer displays, e.g. 200s -> "3:20".
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
