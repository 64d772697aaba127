package speech

import (
	"context"
	"time"

	"cookmode/internal/domain"
)

// Voice implements domain.Speaker on top of the Mouth. It maps each
// spoken event to a catalog line and a queue priority: timer
// announcements preempt step narration, step narration preempts
// background chatter.
type Voice struct {
	mouth *Mouth
}

// Compile-time interface check.
var _ domain.Speaker = (*Voice)(nil)

// NewVoice wraps a Mouth as the application's Speaker.
func NewVoice(mouth *Mouth) *Voice {
	return &Voice{mouth: mouth}
}

func (v *Voice) Instruction(ctx context.Context, step domain.Step, total int) error {
	v.mouth.Say(LineStep(step, total), PriorityNormal)
	return nil
}

func (v *Voice) Ingredients(ctx context.Context, items []domain.Ingredient) error {
	v.mouth.Say(LineIngredients(items), PriorityNormal)
	return nil
}

func (v *Voice) Duration(ctx context.Context, d time.Duration) error {
	v.mouth.Say(LineDuration(d), PriorityNormal)
	return nil
}

func (v *Voice) Tips(ctx context.Context, tips []string) error {
	v.mouth.Say(LineTips(tips), PriorityNormal)
	return nil
}

func (v *Voice) StepNumber(ctx context.Context, current, total int) error {
	v.mouth.Say(LineStepNumber(current, total), PriorityNormal)
	return nil
}

func (v *Voice) TimerStarted(ctx context.Context, t domain.TimerState) error {
	v.mouth.Say(LineTimerStarted(t), PriorityHigh)
	return nil
}

func (v *Voice) TimerPaused(ctx context.Context, t domain.TimerState) error {
	v.mouth.Say(LineTimerPaused(t), PriorityHigh)
	return nil
}

func (v *Voice) TimerResumed(ctx context.Context, t domain.TimerState) error {
	v.mouth.Say(LineTimerResumed(t), PriorityHigh)
	return nil
}

func (v *Voice) TimerCancelled(ctx context.Context, t domain.TimerState) error {
	v.mouth.Say(LineTimerCancelled(t), PriorityHigh)
	return nil
}

func (v *Voice) TimerFinished(ctx context.Context, t domain.TimerState) error {
	v.mouth.Say(LineTimerFinished(t), PriorityCritical)
	return nil
}

func (v *Voice) TimerRemaining(ctx context.Context, t domain.TimerState) error {
	v.mouth.Say(LineTimerRemaining(t), PriorityHigh)
	return nil
}

func (v *Voice) Message(ctx context.Context, text string) error {
	v.mouth.Say(text, PriorityNormal)
	return nil
}
