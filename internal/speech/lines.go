// lines.go centralises every spoken string. Edit this file to change
// the assistant's personality. Keep lines short and direct; the TTS
// engine handles inflection.
package speech

import (
	"fmt"
	"strings"
	"time"

	"cookmode/internal/domain"
)

// ── Steps ────────────────────────────────────────────────────────

// LineStep reads a step out loud: position, instruction, and duration
// when the step is timed.
func LineStep(step domain.Step, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Step %d of %d. %s", step.Order, total, step.Instruction)
	if step.Timed() {
		fmt.Fprintf(&b, " This takes %s.", SpokenDuration(step.Duration))
	}
	return b.String()
}

func LineStepNumber(current, total int) string {
	return fmt.Sprintf("You're on step %d of %d.", current, total)
}

func LineDuration(d time.Duration) string {
	return fmt.Sprintf("This step takes %s.", SpokenDuration(d))
}

func LineTips(tips []string) string {
	return strings.Join(tips, " ")
}

func LineDescription(r *domain.Recipe) string {
	return fmt.Sprintf("%s. %s", r.Name, r.Description)
}

// LineIngredients reads an ingredient list with natural joining.
func LineIngredients(items []domain.Ingredient) string {
	var b strings.Builder
	b.WriteString("You'll need: ")
	for i, ing := range items {
		if i > 0 && i == len(items)-1 {
			b.WriteString(", and ")
		} else if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(SpokenIngredient(ing))
	}
	b.WriteString(".")
	return b.String()
}

// SpokenIngredient renders one ingredient for speech, e.g.
// "200 grams spaghetti" or "2 garlic cloves, optional".
func SpokenIngredient(ing domain.Ingredient) string {
	var b strings.Builder
	qty := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", ing.Quantity), "0"), ".")
	switch ing.Unit {
	case "", "pieces":
		fmt.Fprintf(&b, "%s %s", qty, ing.Name)
	default:
		fmt.Fprintf(&b, "%s %s %s", qty, ing.Unit, ing.Name)
	}
	if ing.Optional {
		b.WriteString(", optional")
	}
	return b.String()
}

// ── Timers ───────────────────────────────────────────────────────

func LineTimerStarted(t domain.TimerState) string {
	return fmt.Sprintf("Timer started for step %d: %s.", t.StepIndex+1, SpokenDuration(t.Duration))
}

func LineTimerPaused(t domain.TimerState) string {
	return fmt.Sprintf("Timer paused with %s left.", domain.Clock(t.Remaining))
}

func LineTimerResumed(t domain.TimerState) string {
	return fmt.Sprintf("Timer resumed, %s to go.", domain.Clock(t.Remaining))
}

func LineTimerCancelled(t domain.TimerState) string {
	return fmt.Sprintf("Step %d timer cancelled.", t.StepIndex+1)
}

func LineTimerFinished(t domain.TimerState) string {
	return fmt.Sprintf("Time's up on step %d.", t.StepIndex+1)
}

func LineTimerRemaining(t domain.TimerState) string {
	return fmt.Sprintf("%s left on the step %d timer.", domain.Clock(t.Remaining), t.StepIndex+1)
}

// Guard rejections. Every refused timer command gets one of these —
// a rejected command is spoken, never silent.

func LineTimerAlreadyRunning() string {
	return "A timer is already running for this step."
}

func LineStepHasNoDuration() string {
	return "This step has no duration to time."
}

func LineNoTimerToPause() string {
	return "There's no running timer to pause on this step."
}

func LineNoTimerToResume() string {
	return "There's no paused timer to resume on this step."
}

func LineNoTimerToStop() string {
	return "There's no running timer to stop on this step."
}

func LineNoTimerToCheck() string {
	return "No timer on this step."
}

// ── Durations ────────────────────────────────────────────────────

// SpokenDuration renders a duration the way a person would say it:
// "5 minutes", "6 minutes 30 seconds", "45 seconds".
func SpokenDuration(d time.Duration) string {
	d = d.Round(time.Second)
	total := int(d.Seconds())
	m, s := total/60, total%60

	switch {
	case m == 0:
		return plural(s, "second")
	case s == 0:
		return plural(m, "minute")
	default:
		return plural(m, "minute") + " " + plural(s, "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
