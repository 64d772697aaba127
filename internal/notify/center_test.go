package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"cookmode/internal/domain"
	"cookmode/internal/logger"
)

type mockNotifier struct {
	mu     sync.Mutex
	urgent []string
}

func (m *mockNotifier) Notify(_ context.Context, msg string) error { return nil }

func (m *mockNotifier) NotifyUrgent(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urgent = append(m.urgent, msg)
	return nil
}

func ts(id string, step int, remaining time.Duration, status domain.TimerStatus) domain.TimerState {
	return domain.TimerState{
		ID:        id,
		RecipeID:  "pasta",
		StepIndex: step,
		Duration:  remaining,
		Remaining: remaining,
		Status:    status,
	}
}

func TestSummaryTitleAndLines(t *testing.T) {
	c := NewCenter(&mockNotifier{}, logger.New(logger.LevelOff, nil))

	title, lines := c.Summary()
	if title != "" || lines != nil {
		t.Fatalf("empty center must have no summary, got %q %v", title, lines)
	}

	c.Update([]domain.TimerState{ts("a", 1, 200*time.Second, domain.TimerRunning)})
	title, lines = c.Summary()
	if title != "1 Cooking Timer Active" {
		t.Fatalf("singular title wrong: %q", title)
	}
	if len(lines) != 1 || lines[0] != "Step 2 — 3:20" {
		t.Fatalf("line wrong: %v", lines)
	}

	c.Update([]domain.TimerState{
		ts("b", 3, 65*time.Second, domain.TimerPaused),
		ts("a", 1, 200*time.Second, domain.TimerRunning),
	})
	title, lines = c.Summary()
	if title != "2 Cooking Timers Active" {
		t.Fatalf("plural title wrong: %q", title)
	}
	// Lines are ordered by step regardless of input order.
	if lines[0] != "Step 2 — 3:20" {
		t.Fatalf("expected step 2 first, got %q", lines[0])
	}
	if lines[1] != "Step 4 — 1:05 (paused)" {
		t.Fatalf("paused suffix missing: %q", lines[1])
	}
}

func TestDeepLinkTargetsLowestRemaining(t *testing.T) {
	c := NewCenter(&mockNotifier{}, logger.New(logger.LevelOff, nil))

	if _, ok := c.DeepLink(); ok {
		t.Fatal("no timers, no deep link")
	}

	c.Update([]domain.TimerState{
		ts("a", 0, 5*time.Minute, domain.TimerRunning),
		ts("b", 4, 30*time.Second, domain.TimerRunning),
		ts("c", 2, 2*time.Minute, domain.TimerRunning),
	})

	link, ok := c.DeepLink()
	if !ok {
		t.Fatal("expected a deep link")
	}
	if link.StepIndex != 4 || link.RecipeID != "pasta" {
		t.Fatalf("expected step 4 (30s left), got %+v", link)
	}

	c.Clear()
	if _, ok := c.DeepLink(); ok {
		t.Fatal("deep link must clear with the summary")
	}
}

func TestAlarmNoticesPerStep(t *testing.T) {
	out := &mockNotifier{}
	c := NewCenter(out, logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	c.PostAlarm(ctx, ts("a", 2, 0, domain.TimerFinished))
	c.PostAlarm(ctx, ts("b", 4, 0, domain.TimerFinished))
	// Same step again overwrites, not duplicates.
	c.PostAlarm(ctx, ts("c", 2, 0, domain.TimerFinished))

	if got := c.PendingAlarms(); len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Fatalf("expected pending alarms [2 4], got %v", got)
	}

	out.mu.Lock()
	urgents := len(out.urgent)
	firstMsg := out.urgent[0]
	out.mu.Unlock()
	if urgents != 3 {
		t.Fatalf("every alarm posts an urgent notice, got %d", urgents)
	}
	if !strings.Contains(firstMsg, "step 3") {
		t.Fatalf("notice names the 1-based step: %q", firstMsg)
	}

	c.DismissAlarm(2)
	c.DismissAlarm(99) // unknown step is a no-op
	if got := c.PendingAlarms(); len(got) != 1 || got[0] != 4 {
		t.Fatalf("expected pending [4], got %v", got)
	}

	c.DismissAlarms([]int{4})
	if got := c.PendingAlarms(); len(got) != 0 {
		t.Fatalf("expected none pending, got %v", got)
	}
}
