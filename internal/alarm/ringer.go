// Package alarm plays the completion signal for finished timers: a
// bounded-duration alarm tone, a vibration-style urgent pulse, and a
// per-step alarm notice with a dismiss action.
package alarm

import (
	"context"
	"sync"
	"time"

	"cookmode/internal/domain"
	"cookmode/internal/logger"
	"cookmode/internal/notify"
)

// Sink plays raw audio and can be interrupted. *speech.Player satisfies
// it; tests use a fake.
type Sink interface {
	// Play blocks until the audio finishes or Stop is called.
	Play(wav []byte) error
	// Stop interrupts the current playback, if any.
	Stop()
}

// Option configures the ringer.
type Option func(*Ringer)

// WithCeiling bounds alarm tone playback even if no dismiss ever
// arrives. Prevents runaway playback when the stop callback is missed.
func WithCeiling(d time.Duration) Option {
	return func(r *Ringer) {
		r.ceiling = d
	}
}

// Ringer owns the single alarm audio channel. Starting a new alarm
// stops any currently playing one first; two alarm sounds never
// overlap.
type Ringer struct {
	sink    Sink
	notices *notify.Center
	log     *logger.Logger
	ceiling time.Duration
	tone    []byte

	mu      sync.Mutex
	current *playback // nil when silent
}

type playback struct {
	stepIndex int
	done      chan struct{}
}

// New creates a ringer playing through sink and posting notices
// through the notification center.
func New(sink Sink, notices *notify.Center, log *logger.Logger, opts ...Option) *Ringer {
	r := &Ringer{
		sink:    sink,
		notices: notices,
		log:     log,
		ceiling: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.tone = alarmTone()
	return r
}

// Trigger fires the completion signal for a finished timer: posts the
// per-step alarm notice, emits the vibration pulse, and starts the
// tone. Any alarm already sounding is stopped first.
func (r *Ringer) Trigger(t domain.TimerState) {
	ctx := context.Background()
	r.notices.PostAlarm(ctx, t)

	r.mu.Lock()
	if r.current != nil {
		r.sink.Stop()
		r.log.Debug("alarm: step %d tone preempted by step %d", r.current.stepIndex+1, t.StepIndex+1)
	}
	pb := &playback{stepIndex: t.StepIndex, done: make(chan struct{})}
	r.current = pb
	r.mu.Unlock()

	go r.ring(pb)
}

// ring plays the tone until dismissed or the ceiling is hit.
func (r *Ringer) ring(pb *playback) {
	defer close(pb.done)

	ceiling := time.AfterFunc(r.ceiling, func() {
		r.log.Warn("alarm: step %d tone hit the %s ceiling, stopping", pb.stepIndex+1, r.ceiling)
		r.sink.Stop()
	})
	defer ceiling.Stop()

	if err := r.sink.Play(r.tone); err != nil {
		r.log.Error("alarm: tone playback: %v", err)
	}

	r.mu.Lock()
	if r.current == pb {
		r.current = nil
	}
	r.mu.Unlock()
}

// Dismiss stops the sound if the given step's alarm is the one
// playing, and cancels that step's alarm notice. Unknown steps only
// clear notices (no-op on sound).
func (r *Ringer) Dismiss(stepIndex int) {
	r.notices.DismissAlarm(stepIndex)

	r.mu.Lock()
	pb := r.current
	if pb != nil && pb.stepIndex == stepIndex {
		r.current = nil
		r.mu.Unlock()
		r.sink.Stop()
		r.log.Debug("alarm: step %d dismissed", stepIndex+1)
		return
	}
	r.mu.Unlock()
}

// DismissAll silences the ringer and clears the alarm notices for the
// given steps. Used by stop-all cleanup when cooking mode is abandoned.
func (r *Ringer) DismissAll(stepIndices []int) {
	r.notices.DismissAlarms(stepIndices)

	r.mu.Lock()
	pb := r.current
	r.current = nil
	r.mu.Unlock()

	if pb != nil {
		r.sink.Stop()
		r.log.Debug("alarm: silenced during cleanup")
	}
}

// Ringing reports whether an alarm tone is currently sounding.
func (r *Ringer) Ringing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}
