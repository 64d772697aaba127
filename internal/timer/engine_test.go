package timer

import (
	"context"
	"sync"
	"testing"
	"time"

	"cookmode/internal/domain"
	"cookmode/internal/logger"
)

// mockAlarm records trigger and dismiss calls.
type mockAlarm struct {
	mu        sync.Mutex
	triggered []domain.TimerState
	dismissed [][]int
}

func (m *mockAlarm) Trigger(t domain.TimerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggered = append(m.triggered, t)
}

func (m *mockAlarm) DismissAll(stepIndices []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dismissed = append(m.dismissed, stepIndices)
}

func (m *mockAlarm) triggerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.triggered)
}

// mockBoard counts summary refreshes and teardowns.
type mockBoard struct {
	mu      sync.Mutex
	updates int
	clears  int
}

func (m *mockBoard) Update(active []domain.TimerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
}

func (m *mockBoard) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
}

func (m *mockBoard) clearCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

func newTestEngine(t *testing.T) (*Engine, *mockAlarm, *mockBoard) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	al := &mockAlarm{}
	bd := &mockBoard{}
	eng := New(al, bd, log, WithTickInterval(20*time.Millisecond))
	return eng, al, bd
}

func state(id string, step int, remaining time.Duration) domain.TimerState {
	return domain.TimerState{
		ID:        id,
		RecipeID:  "pasta",
		StepIndex: step,
		Duration:  remaining,
		Remaining: remaining,
		Status:    domain.TimerRunning,
	}
}

func TestEngineCountdownFinishes(t *testing.T) {
	eng, al, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	events := eng.Subscribe()
	defer eng.Unsubscribe(events)

	eng.StartTimer(state("t1", 0, 60*time.Millisecond))

	deadline := time.After(2 * time.Second)
	var finished *FinishedEvent
	for finished == nil {
		select {
		case ev := <-events:
			if f, ok := ev.(FinishedEvent); ok {
				finished = &f
			}
		case <-deadline:
			t.Fatal("timer never finished")
		}
	}

	if finished.State.Status != domain.TimerFinished {
		t.Fatalf("expected status Finished, got %s", finished.State.Status)
	}
	if finished.State.Remaining != 0 {
		t.Fatalf("expected 0 remaining at finish, got %s", finished.State.Remaining)
	}
	if got := al.triggerCount(); got != 1 {
		t.Fatalf("expected exactly 1 alarm trigger, got %d", got)
	}
	if snap := eng.Snapshot(); len(snap) != 0 {
		t.Fatalf("expected finished timer removed from snapshot, got %d entries", len(snap))
	}
}

func TestEngineFinishesExactlyOnce(t *testing.T) {
	eng, al, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	events := eng.Subscribe()
	defer eng.Unsubscribe(events)

	eng.StartTimer(state("t1", 0, 40*time.Millisecond))
	time.Sleep(300 * time.Millisecond)

	finishes := 0
	for {
		select {
		case ev := <-events:
			if _, ok := ev.(FinishedEvent); ok {
				finishes++
			}
			continue
		default:
		}
		break
	}

	if finishes != 1 {
		t.Fatalf("expected exactly 1 finished event, got %d", finishes)
	}
	if got := al.triggerCount(); got != 1 {
		t.Fatalf("expected exactly 1 alarm trigger, got %d", got)
	}
}

func TestEngineReplacesSameStep(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	eng.StartTimer(state("t1", 2, 5*time.Second))
	eng.StartTimer(state("t2", 2, 10*time.Second))

	snap := eng.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected one timer per step, got %d", len(snap))
	}
	if snap[0].ID != "t2" {
		t.Fatalf("expected replacement timer t2 to own the step, got %s", snap[0].ID)
	}
}

func TestEngineDiscardsLateTicksFromReplacedTimer(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	events := eng.Subscribe()
	defer eng.Unsubscribe(events)

	eng.StartTimer(state("old", 0, 5*time.Second))
	time.Sleep(60 * time.Millisecond) // let the old task tick a bit
	eng.StartTimer(state("new", 0, 5*time.Second))

	// Drain everything queued before the replacement settled.
	time.Sleep(200 * time.Millisecond)
	sawOldAfterReplace := false
	sawNew := false
	for {
		select {
		case ev := <-events:
			tick, ok := ev.(TickEvent)
			if !ok {
				continue
			}
			if sawNew && tick.State.ID == "old" {
				sawOldAfterReplace = true
			}
			if tick.State.ID == "new" {
				sawNew = true
			}
			continue
		default:
		}
		break
	}

	if sawOldAfterReplace {
		t.Fatal("replaced timer kept ticking after replacement")
	}
	snap := eng.Snapshot()
	if len(snap) != 1 || snap[0].ID != "new" {
		t.Fatalf("expected only the new timer, got %+v", snap)
	}
}

func TestEnginePauseFreezesRemaining(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	eng.StartTimer(state("t1", 0, 10*time.Second))
	time.Sleep(60 * time.Millisecond)
	eng.PauseTimer("t1")

	snap := eng.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected paused timer in snapshot, got %d entries", len(snap))
	}
	frozen := snap[0].Remaining
	if snap[0].Status != domain.TimerPaused {
		t.Fatalf("expected status Paused, got %s", snap[0].Status)
	}

	time.Sleep(150 * time.Millisecond)
	snap = eng.Snapshot()
	if snap[0].Remaining != frozen {
		t.Fatalf("remaining changed while paused: %s -> %s", frozen, snap[0].Remaining)
	}
}

func TestEngineResumeUsesSuppliedRemaining(t *testing.T) {
	eng, al, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	eng.StartTimer(state("t1", 0, 10*time.Second))
	eng.PauseTimer("t1")

	// Resume with nearly nothing left: it should finish promptly.
	resumed := state("t1", 0, 10*time.Second)
	resumed.Remaining = 40 * time.Millisecond
	eng.ResumeTimer("t1", resumed)

	deadline := time.Now().Add(2 * time.Second)
	for al.triggerCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("resumed timer never finished")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestEngineResumeRequiresPaused(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	eng.StartTimer(state("t1", 0, 10*time.Second))
	running := eng.Snapshot()[0]

	// Resume on a running timer must not reset remaining.
	bogus := state("t1", 0, 10*time.Second)
	bogus.Remaining = 1 * time.Millisecond
	eng.ResumeTimer("t1", bogus)

	snap := eng.Snapshot()
	if snap[0].Remaining > running.Remaining {
		t.Fatalf("remaining grew after bogus resume: %s -> %s", running.Remaining, snap[0].Remaining)
	}
	if snap[0].Remaining < running.Remaining-200*time.Millisecond {
		t.Fatalf("bogus resume rewrote remaining: %s", snap[0].Remaining)
	}
}

func TestEngineStopAllCleansUp(t *testing.T) {
	eng, al, bd := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	eng.StartTimer(state("t1", 0, 10*time.Second))
	eng.StartTimer(state("t2", 3, 10*time.Second))

	eng.StopAllAndCleanup([]int{0, 3})

	if snap := eng.Snapshot(); len(snap) != 0 {
		t.Fatalf("expected empty snapshot after stop-all, got %d", len(snap))
	}
	if bd.clearCount() == 0 {
		t.Fatal("expected board cleared on stop-all")
	}

	al.mu.Lock()
	defer al.mu.Unlock()
	if len(al.dismissed) != 1 || len(al.dismissed[0]) != 2 {
		t.Fatalf("expected one dismiss-all with 2 steps, got %+v", al.dismissed)
	}
}

func TestEngineRemainingStaysInBounds(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	events := eng.Subscribe()
	defer eng.Unsubscribe(events)

	dur := 100 * time.Millisecond
	eng.StartTimer(state("t1", 0, dur))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			switch e := ev.(type) {
			case TickEvent:
				if e.State.Remaining < 0 || e.State.Remaining > dur {
					t.Fatalf("remaining out of bounds: %s (duration %s)", e.State.Remaining, dur)
				}
			case FinishedEvent:
				if e.State.Remaining != 0 {
					t.Fatalf("finished with nonzero remaining: %s", e.State.Remaining)
				}
				return
			}
		case <-deadline:
			t.Fatal("timer never finished")
		}
	}
}

func TestEngineUnknownIDsAreNoops(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	eng.StartTimer(state("t1", 0, 10*time.Second))

	eng.PauseTimer("ghost")
	eng.StopTimer("ghost")
	eng.ResumeTimer("ghost", state("ghost", 5, time.Second))

	snap := eng.Snapshot()
	if len(snap) != 1 || snap[0].ID != "t1" {
		t.Fatalf("unknown-id commands disturbed state: %+v", snap)
	}
}

func TestEngineStopClearsBoardWhenLastTimerGone(t *testing.T) {
	eng, _, bd := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	eng.StartTimer(state("t1", 0, 10*time.Second))
	eng.StopTimer("t1")

	if snap := eng.Snapshot(); len(snap) != 0 {
		t.Fatalf("expected empty snapshot, got %d", len(snap))
	}
	if bd.clearCount() == 0 {
		t.Fatal("expected board cleared when the last timer stopped")
	}
}
