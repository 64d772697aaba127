package speech

import (
	"strings"
	"testing"
	"time"

	"cookmode/internal/domain"
)

func TestSpokenDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45 seconds"},
		{1 * time.Second, "1 second"},
		{5 * time.Minute, "5 minutes"},
		{1 * time.Minute, "1 minute"},
		{6*time.Minute + 30*time.Second, "6 minutes 30 seconds"},
		{1*time.Minute + 1*time.Second, "1 minute 1 second"},
		{90 * time.Second, "1 minute 30 seconds"},
	}
	for _, tt := range tests {
		if got := SpokenDuration(tt.d); got != tt.want {
			t.Errorf("SpokenDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestLineStepMentionsDurationOnlyWhenTimed(t *testing.T) {
	timed := domain.Step{Order: 2, Instruction: "Cook the spaghetti until al dente.", Duration: 9 * time.Minute}
	got := LineStep(timed, 5)
	if !strings.HasPrefix(got, "Step 2 of 5.") {
		t.Fatalf("missing position: %q", got)
	}
	if !strings.Contains(got, "9 minutes") {
		t.Fatalf("missing duration: %q", got)
	}

	untimed := domain.Step{Order: 1, Instruction: "Bring water to a boil."}
	if got := LineStep(untimed, 5); strings.Contains(got, "takes") {
		t.Fatalf("untimed step must not mention a duration: %q", got)
	}
}

func TestLineIngredientsJoining(t *testing.T) {
	one := []domain.Ingredient{{Name: "eggs", Quantity: 2, Unit: "pieces"}}
	if got := LineIngredients(one); got != "You'll need: 2 eggs." {
		t.Fatalf("single ingredient: %q", got)
	}

	three := []domain.Ingredient{
		{Name: "spaghetti", Quantity: 200, Unit: "grams"},
		{Name: "garlic cloves", Quantity: 2, Unit: "pieces"},
		{Name: "chili flakes", Quantity: 1, Unit: "pinch", Optional: true},
	}
	got := LineIngredients(three)
	want := "You'll need: 200 grams spaghetti, 2 garlic cloves, and 1 pinch chili flakes, optional."
	if got != want {
		t.Fatalf("LineIngredients = %q, want %q", got, want)
	}
}

func TestSpokenIngredientTrimsQuantity(t *testing.T) {
	tests := []struct {
		ing  domain.Ingredient
		want string
	}{
		{domain.Ingredient{Name: "butter", Quantity: 1.5, Unit: "tablespoons"}, "1.5 tablespoons butter"},
		{domain.Ingredient{Name: "onion", Quantity: 1, Unit: "pieces"}, "1 onion"},
		{domain.Ingredient{Name: "basil", Quantity: 1, Unit: ""}, "1 basil"},
	}
	for _, tt := range tests {
		if got := SpokenIngredient(tt.ing); got != tt.want {
			t.Errorf("SpokenIngredient(%+v) = %q, want %q", tt.ing, got, tt.want)
		}
	}
}

func TestTimerLinesUseClockAndOneBasedSteps(t *testing.T) {
	state := domain.TimerState{
		ID:        "t",
		StepIndex: 1,
		Duration:  200 * time.Second,
		Remaining: 200 * time.Second,
		Status:    domain.TimerRunning,
	}

	if got := LineTimerStarted(state); !strings.Contains(got, "step 2") || !strings.Contains(got, "3 minutes 20 seconds") {
		t.Fatalf("LineTimerStarted = %q", got)
	}
	if got := LineTimerRemaining(state); !strings.Contains(got, "3:20") {
		t.Fatalf("LineTimerRemaining must use clock form: %q", got)
	}
	if got := LineTimerFinished(state); !strings.Contains(got, "step 2") {
		t.Fatalf("LineTimerFinished = %q", got)
	}
}
