package speech

import (
	"context"
	"time"

	"cookmode/internal/domain"
)

// NoOp is a Speaker that says nothing. Used in no-speech mode and in
// tests.
type NoOp struct{}

var _ domain.Speaker = NoOp{}

func (NoOp) Instruction(context.Context, domain.Step, int) error       { return nil }
func (NoOp) Ingredients(context.Context, []domain.Ingredient) error    { return nil }
func (NoOp) Duration(context.Context, time.Duration) error             { return nil }
func (NoOp) Tips(context.Context, []string) error                      { return nil }
func (NoOp) StepNumber(context.Context, int, int) error                { return nil }
func (NoOp) TimerStarted(context.Context, domain.TimerState) error     { return nil }
func (NoOp) TimerPaused(context.Context, domain.TimerState) error      { return nil }
func (NoOp) TimerResumed(context.Context, domain.TimerState) error     { return nil }
func (NoOp) TimerCancelled(context.Context, domain.TimerState) error   { return nil }
func (NoOp) TimerFinished(context.Context, domain.TimerState) error    { return nil }
func (NoOp) TimerRemaining(context.Context, domain.TimerState) error   { return nil }
func (NoOp) Message(context.Context, string) error                     { return nil }
