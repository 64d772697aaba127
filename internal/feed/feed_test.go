package feed

import (
	"encoding/json"
	"testing"
	"time"

	"cookmode/internal/domain"
	"cookmode/internal/timer"
)

func state(remaining time.Duration, status domain.TimerStatus) domain.TimerState {
	return domain.TimerState{
		ID:        "t1",
		RecipeID:  "tomato-basil-pasta",
		StepIndex: 1,
		Duration:  9 * time.Minute,
		Remaining: remaining,
		Status:    status,
	}
}

func TestMarshalTickEvent(t *testing.T) {
	msg, ok := marshalEvent(timer.TickEvent{State: state(200*time.Second, domain.TimerRunning)})
	if !ok {
		t.Fatal("tick event must marshal")
	}

	var env struct {
		Type string     `json:"type"`
		Ts   time.Time  `json:"ts"`
		Data timerFrame `json:"data"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Type != "timer_tick" {
		t.Fatalf("type = %q", env.Type)
	}
	if env.Ts.IsZero() {
		t.Fatal("ts missing")
	}
	f := env.Data
	if f.ID != "t1" || f.RecipeID != "tomato-basil-pasta" || f.StepIndex != 1 {
		t.Fatalf("identity fields wrong: %+v", f)
	}
	if f.DurationS != 540 || f.RemainingS != 200 {
		t.Fatalf("seconds wrong: %+v", f)
	}
	if f.Status != "running" || f.Clock != "3:20" {
		t.Fatalf("display fields wrong: %+v", f)
	}
}

func TestMarshalFinishedEvent(t *testing.T) {
	msg, ok := marshalEvent(timer.FinishedEvent{State: state(0, domain.TimerFinished)})
	if !ok {
		t.Fatal("finished event must marshal")
	}
	var env struct {
		Type string     `json:"type"`
		Data timerFrame `json:"data"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Type != "timer_finished" || env.Data.Status != "finished" || env.Data.Clock != "0:00" {
		t.Fatalf("frame wrong: %+v", env)
	}
}

func TestMarshalClearedEvent(t *testing.T) {
	msg, ok := marshalEvent(timer.ClearedEvent{StepIndices: []int{1, 3}})
	if !ok {
		t.Fatal("cleared event must marshal")
	}
	var env struct {
		Type string           `json:"type"`
		Data map[string][]int `json:"data"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Type != "timers_cleared" {
		t.Fatalf("type = %q", env.Type)
	}
	if got := env.Data["step_indices"]; len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("step indices wrong: %v", env.Data)
	}
}
