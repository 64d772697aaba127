package domain

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{200 * time.Second, "3:20"},
		{0, "0:00"},
		{5 * time.Second, "0:05"},
		{time.Hour, "60:00"},
		{-3 * time.Second, "0:00"},
		{1500 * time.Millisecond, "0:02"}, // rounds, not truncates
	}
	for _, tt := range tests {
		if got := Clock(tt.d); got != tt.want {
			t.Errorf("Clock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestClampedBoundsRemaining(t *testing.T) {
	base := TimerState{Duration: time.Minute}

	over := base
	over.Remaining = 2 * time.Minute
	if got := over.Clamped().Remaining; got != time.Minute {
		t.Fatalf("over-long remaining must clamp to duration, got %v", got)
	}

	under := base
	under.Remaining = -time.Second
	if got := under.Clamped().Remaining; got != 0 {
		t.Fatalf("negative remaining must clamp to zero, got %v", got)
	}

	fine := base
	fine.Remaining = 30 * time.Second
	if got := fine.Clamped().Remaining; got != 30*time.Second {
		t.Fatalf("in-range remaining must be untouched, got %v", got)
	}
}

func TestActiveStatuses(t *testing.T) {
	tests := []struct {
		status TimerStatus
		want   bool
	}{
		{TimerRunning, true},
		{TimerPaused, true},
		{TimerFinished, false},
		{TimerCancelled, false},
	}
	for _, tt := range tests {
		ts := TimerState{Status: tt.status}
		if got := ts.Active(); got != tt.want {
			t.Errorf("Active() with %s = %v, want %v", tt.status, got, tt.want)
		}
	}
}
