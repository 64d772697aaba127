// Package timer implements the background countdown engine. It runs one
// independent ticking task per active timer, survives UI teardown, keeps
// the summary notification current, and raises the alarm on completion.
//
// The engine is an actor: a single run goroutine owns all countdown
// state. Commands arrive on a channel, per-timer tick goroutines report
// back on a second channel, and observers consume an event stream. No
// other goroutine ever touches a job.
package timer

import (
	"context"
	"sort"
	"sync"
	"time"

	"cookmode/internal/domain"
	"cookmode/internal/logger"
)

// Alarm is the completion signal consumed by the engine.
type Alarm interface {
	Trigger(t domain.TimerState)
	DismissAll(stepIndices []int)
}

// Board is the always-current summary notification of active timers.
type Board interface {
	Update(active []domain.TimerState)
	Clear()
}

// Option configures the engine.
type Option func(*Engine)

// WithTickInterval sets the countdown resolution. Each tick decrements
// one tick's worth of remaining time. Default 1s; tests shrink it.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.tick = d
	}
}

// WithEventBuffer sets the per-subscriber event channel capacity.
func WithEventBuffer(n int) Option {
	return func(e *Engine) {
		e.eventBuf = n
	}
}

// Engine runs countdowns independently of the foreground UI lifetime.
type Engine struct {
	alarm    Alarm
	board    Board
	log      *logger.Logger
	tick     time.Duration
	eventBuf int

	cmds  chan command
	ticks chan tickMsg

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	quit    chan struct{}
	subs    map[chan Event]struct{}

	// Owned by the run goroutine.
	jobs map[string]*job
	gen  uint64
}

// job pairs a timer state with its running countdown task.
type job struct {
	state  domain.TimerState
	gen    uint64 // ticks from older generations are discarded
	cancel context.CancelFunc
}

type tickMsg struct {
	id  string
	gen uint64
}

// Commands accepted by the run loop.
type command interface{ timerCommand() }

type startCmd struct{ state domain.TimerState }
type pauseCmd struct{ id string }
type resumeCmd struct {
	id    string
	state domain.TimerState
}
type stopCmd struct{ id string }
type stopAllCmd struct{ stepIndices []int }
type snapshotCmd struct{ reply chan []domain.TimerState }

func (startCmd) timerCommand()    {}
func (pauseCmd) timerCommand()    {}
func (resumeCmd) timerCommand()   {}
func (stopCmd) timerCommand()     {}
func (stopAllCmd) timerCommand()  {}
func (snapshotCmd) timerCommand() {}

// New creates a countdown engine with the given collaborators.
func New(alarm Alarm, board Board, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		alarm:    alarm,
		board:    board,
		log:      log,
		tick:     1 * time.Second,
		eventBuf: 64,
		cmds:     make(chan command, 64),
		ticks:    make(chan tickMsg, 64),
		subs:     make(map[chan Event]struct{}),
		jobs:     make(map[string]*job),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins the engine run loop. Non-blocking.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		e.log.Warn("timer engine already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.quit = make(chan struct{})
	e.running = true

	go e.run(childCtx)

	e.log.Info("timer engine started (tick=%s)", e.tick)
}

// Stop shuts the engine down, cancelling every countdown.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.cancel()
	e.log.Info("timer engine stopping")
}

// ── Command surface ──────────────────────────────────────────────

// StartTimer registers (or replaces) a countdown for the given timer.
// Any prior task for the same id or the same step index is cancelled
// first; no orphaned tasks.
func (e *Engine) StartTimer(t domain.TimerState) {
	e.send(startCmd{state: t})
}

// PauseTimer stops the ticking task but retains the last remaining
// value. No-op when the timer is unknown.
func (e *Engine) PauseTimer(id string) {
	e.send(pauseCmd{id: id})
}

// ResumeTimer restarts ticking from the supplied state. The caller is
// the source of truth for remaining time at resume. No-op when unknown.
func (e *Engine) ResumeTimer(id string, t domain.TimerState) {
	e.send(resumeCmd{id: id, state: t})
}

// StopTimer cancels and removes the timer. When the active set empties,
// the summary board is torn down.
func (e *Engine) StopTimer(id string) {
	e.send(stopCmd{id: id})
}

// StopAllAndCleanup cancels every countdown atomically with respect to
// new starts, clears the board, and dismisses alarm notices for the
// given step indices.
func (e *Engine) StopAllAndCleanup(stepIndices []int) {
	e.send(stopAllCmd{stepIndices: stepIndices})
}

// Snapshot returns a copy of all tracked timer states sorted by step
// index. Returns nil when the engine is not running.
func (e *Engine) Snapshot() []domain.TimerState {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	quit := e.quit
	e.mu.Unlock()

	reply := make(chan []domain.TimerState, 1)
	select {
	case e.cmds <- snapshotCmd{reply: reply}:
	case <-quit:
		return nil
	}
	select {
	case states := <-reply:
		return states
	case <-quit:
		return nil
	}
}

// send enqueues a command, dropping it with a log when the engine has
// shut down. Commands are applied in issuance order per timer id.
func (e *Engine) send(c command) {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		e.log.Debug("timer engine not running, dropping %T", c)
		return
	}
	quit := e.quit
	e.mu.Unlock()

	select {
	case e.cmds <- c:
	case <-quit:
		e.log.Debug("timer engine quit, dropped %T", c)
	}
}

// ── Event stream ─────────────────────────────────────────────────

// Subscribe registers an event channel. The engine never blocks on a
// subscriber: events for a full channel are dropped with a debug log.
func (e *Engine) Subscribe() chan Event {
	ch := make(chan Event, e.eventBuf)
	e.mu.Lock()
	e.subs[ch] = struct{}{}
	e.mu.Unlock()
	return ch
}

// Unsubscribe detaches an event channel. Detaching never stops timers.
func (e *Engine) Unsubscribe(ch chan Event) {
	e.mu.Lock()
	delete(e.subs, ch)
	e.mu.Unlock()
}

func (e *Engine) publish(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for ch := range e.subs {
		select {
		case ch <- ev:
		default:
			e.log.Debug("timer engine: subscriber full, dropped %T", ev)
		}
	}
}

// ── Run loop ─────────────────────────────────────────────────────

func (e *Engine) run(ctx context.Context) {
	defer e.shutdown()

	for {
		select {
		case <-ctx.Done():
			for _, j := range e.jobs {
				j.cancel()
			}
			e.jobs = make(map[string]*job)
			e.board.Clear()
			e.log.Info("timer engine stopped")
			return
		case c := <-e.cmds:
			e.handle(ctx, c)
		case t := <-e.ticks:
			e.handleTick(t)
		}
	}
}

func (e *Engine) shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	close(e.quit)
}

func (e *Engine) handle(ctx context.Context, c command) {
	switch c := c.(type) {
	case startCmd:
		e.startJob(ctx, c.state)
	case pauseCmd:
		e.pauseJob(c.id)
	case resumeCmd:
		e.resumeJob(ctx, c.id, c.state)
	case stopCmd:
		e.stopJob(c.id)
	case stopAllCmd:
		e.stopAll(c.stepIndices)
	case snapshotCmd:
		c.reply <- e.states()
	}
}

func (e *Engine) startJob(ctx context.Context, state domain.TimerState) {
	// Replace: cancel any job with the same id, and any job already
	// owning this step. At most one timer per step exists.
	if prev, ok := e.jobs[state.ID]; ok {
		prev.cancel()
		delete(e.jobs, state.ID)
	}
	for id, j := range e.jobs {
		if j.state.StepIndex == state.StepIndex && j.state.RecipeID == state.RecipeID {
			j.cancel()
			delete(e.jobs, id)
			e.log.Debug("timer %s replaced on step %d", id, state.StepIndex+1)
		}
	}

	state = state.Clamped()
	state.Status = domain.TimerRunning
	if state.StartedAt.IsZero() {
		state.StartedAt = time.Now()
	}

	e.gen++
	jobCtx, cancel := context.WithCancel(ctx)
	j := &job{state: state, gen: e.gen, cancel: cancel}
	e.jobs[state.ID] = j
	go e.countdown(jobCtx, state.ID, j.gen)

	e.log.Info("timer %s started: step %d, %s", state.ID, state.StepIndex+1, state.Remaining)
	e.publish(TickEvent{State: state})
	e.board.Update(e.states())
}

func (e *Engine) pauseJob(id string) {
	j, ok := e.jobs[id]
	if !ok || j.state.Status != domain.TimerRunning {
		e.log.Debug("pause ignored for timer %s", id)
		return
	}
	j.cancel()
	j.state.Status = domain.TimerPaused
	j.state.PausedAt = time.Now()

	e.log.Info("timer %s paused at %s remaining", id, j.state.Remaining)
	e.publish(TickEvent{State: j.state})
	e.board.Update(e.states())
}

func (e *Engine) resumeJob(ctx context.Context, id string, state domain.TimerState) {
	j, ok := e.jobs[id]
	if !ok || j.state.Status != domain.TimerPaused {
		e.log.Debug("resume ignored for timer %s", id)
		return
	}
	j.state.Remaining = state.Clamped().Remaining
	j.state.Status = domain.TimerRunning
	j.state.PausedAt = time.Time{}

	e.gen++
	j.gen = e.gen
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	go e.countdown(jobCtx, id, j.gen)

	e.log.Info("timer %s resumed at %s remaining", id, j.state.Remaining)
	e.publish(TickEvent{State: j.state})
	e.board.Update(e.states())
}

func (e *Engine) stopJob(id string) {
	j, ok := e.jobs[id]
	if !ok {
		e.log.Debug("stop ignored for unknown timer %s", id)
		return
	}
	j.cancel()
	delete(e.jobs, id)

	e.log.Info("timer %s stopped", id)
	if len(e.jobs) == 0 {
		e.board.Clear()
	} else {
		e.board.Update(e.states())
	}
}

func (e *Engine) stopAll(stepIndices []int) {
	for _, j := range e.jobs {
		j.cancel()
	}
	n := len(e.jobs)
	e.jobs = make(map[string]*job)

	e.board.Clear()
	e.alarm.DismissAll(stepIndices)

	e.log.Info("stopped all timers (%d) and cleaned %d alarm slots", n, len(stepIndices))
	e.publish(ClearedEvent{StepIndices: stepIndices})
}

// handleTick applies one countdown tick. Ticks from replaced or
// cancelled jobs carry a stale generation and are discarded, so a late
// tick can never reach a timer the hub no longer tracks.
func (e *Engine) handleTick(t tickMsg) {
	j, ok := e.jobs[t.id]
	if !ok || j.gen != t.gen || j.state.Status != domain.TimerRunning {
		return
	}

	j.state.Remaining -= e.tick
	j.state = j.state.Clamped()

	if j.state.Remaining <= 0 {
		j.cancel()
		delete(e.jobs, t.id)
		j.state.Remaining = 0
		j.state.Status = domain.TimerFinished

		e.log.Info("timer %s finished (step %d)", t.id, j.state.StepIndex+1)
		e.alarm.Trigger(j.state)
		e.publish(FinishedEvent{State: j.state})

		if len(e.jobs) == 0 {
			e.board.Clear()
		} else {
			e.board.Update(e.states())
		}
		return
	}

	e.publish(TickEvent{State: j.state})
	e.board.Update(e.states())
}

// countdown is the per-timer ticking task. It only sleeps and reports;
// all state lives in the run loop.
func (e *Engine) countdown(ctx context.Context, id string, gen uint64) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case e.ticks <- tickMsg{id: id, gen: gen}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// states returns a sorted copy of all tracked timer states.
func (e *Engine) states() []domain.TimerState {
	out := make([]domain.TimerState, 0, len(e.jobs))
	for _, j := range e.jobs {
		out = append(out, j.state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StepIndex < out[j].StepIndex })
	return out
}
