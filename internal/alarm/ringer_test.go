package alarm

import (
	"context"
	"sync"
	"testing"
	"time"

	"cookmode/internal/domain"
	"cookmode/internal/logger"
	"cookmode/internal/notify"
)

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, string) error       { return nil }
func (discardNotifier) NotifyUrgent(context.Context, string) error { return nil }

// blockingSink blocks Play until Stop, like a real audio device.
type blockingSink struct {
	mu     sync.Mutex
	plays  int
	stops  int
	unlock chan struct{}
}

func newBlockingSink() *blockingSink {
	return &blockingSink{unlock: make(chan struct{}, 8)}
}

func (s *blockingSink) Play(wav []byte) error {
	s.mu.Lock()
	s.plays++
	s.mu.Unlock()
	<-s.unlock
	return nil
}

func (s *blockingSink) Stop() {
	s.mu.Lock()
	s.stops++
	s.mu.Unlock()
	s.unlock <- struct{}{}
}

func (s *blockingSink) counts() (plays, stops int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays, s.stops
}

func finished(step int) domain.TimerState {
	return domain.TimerState{
		ID:        "t",
		RecipeID:  "pasta",
		StepIndex: step,
		Status:    domain.TimerFinished,
	}
}

func newTestRinger(t *testing.T, opts ...Option) (*Ringer, *blockingSink, *notify.Center) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	center := notify.NewCenter(discardNotifier{}, log)
	sink := newBlockingSink()
	return New(sink, center, log, opts...), sink, center
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTriggerPostsNoticeAndRings(t *testing.T) {
	r, sink, center := newTestRinger(t)

	r.Trigger(finished(2))
	waitFor(t, func() bool { p, _ := sink.counts(); return p == 1 }, "tone never played")

	if !r.Ringing() {
		t.Fatal("expected ringing")
	}
	if got := center.PendingAlarms(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected alarm notice for step 2, got %v", got)
	}
}

func TestDismissStopsSoundAndNotice(t *testing.T) {
	r, sink, center := newTestRinger(t)

	r.Trigger(finished(1))
	waitFor(t, func() bool { p, _ := sink.counts(); return p == 1 }, "tone never played")

	r.Dismiss(1)
	waitFor(t, func() bool { return !r.Ringing() }, "ringer never went silent")

	if _, stops := sink.counts(); stops == 0 {
		t.Fatal("expected sink stopped")
	}
	if got := center.PendingAlarms(); len(got) != 0 {
		t.Fatalf("expected notice cleared, got %v", got)
	}
}

func TestDismissWrongStepLeavesSound(t *testing.T) {
	r, sink, _ := newTestRinger(t)

	r.Trigger(finished(1))
	waitFor(t, func() bool { p, _ := sink.counts(); return p == 1 }, "tone never played")

	r.Dismiss(5)
	if !r.Ringing() {
		t.Fatal("dismissing an unrelated step must not silence the tone")
	}
	r.DismissAll(nil)
}

func TestNewAlarmPreemptsOldTone(t *testing.T) {
	r, sink, center := newTestRinger(t)

	r.Trigger(finished(0))
	waitFor(t, func() bool { p, _ := sink.counts(); return p == 1 }, "first tone never played")

	r.Trigger(finished(3))
	waitFor(t, func() bool { p, _ := sink.counts(); return p == 2 }, "second tone never played")

	// Both notices stand; only one tone at a time.
	if got := center.PendingAlarms(); len(got) != 2 {
		t.Fatalf("expected 2 notices, got %v", got)
	}
	if !r.Ringing() {
		t.Fatal("expected the new alarm ringing")
	}
	r.DismissAll([]int{0, 3})
}

func TestCeilingBoundsPlayback(t *testing.T) {
	r, sink, _ := newTestRinger(t, WithCeiling(50*time.Millisecond))

	r.Trigger(finished(0))
	waitFor(t, func() bool { _, s := sink.counts(); return s >= 1 }, "ceiling never stopped the tone")
	waitFor(t, func() bool { return !r.Ringing() }, "ringer never went silent after ceiling")
}

func TestAlarmToneIsValidWAV(t *testing.T) {
	tone := alarmTone()
	if len(tone) <= 44 {
		t.Fatalf("tone too short: %d bytes", len(tone))
	}
	if string(tone[0:4]) != "RIFF" || string(tone[8:12]) != "WAVE" {
		t.Fatal("tone is not a RIFF/WAVE container")
	}
}
