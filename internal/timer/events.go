package timer

import "cookmode/internal/domain"

// Event is emitted by the engine on its event stream. The orchestration
// hub and the state feed consume these; nothing else observes engine
// internals.
type Event interface {
	timerEvent()
}

// TickEvent carries a timer's state after one accepted countdown tick.
type TickEvent struct {
	State domain.TimerState
}

func (TickEvent) timerEvent() {}

// FinishedEvent is emitted exactly once per timer, when its remaining
// time reaches zero while running.
type FinishedEvent struct {
	State domain.TimerState
}

func (FinishedEvent) timerEvent() {}

// ClearedEvent is emitted after stop-all cleanup, carrying the step
// indices whose alarms were dismissed.
type ClearedEvent struct {
	StepIndices []int
}

func (ClearedEvent) timerEvent() {}
