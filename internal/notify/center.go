// Package notify maintains the user-facing notification surface for
// cooking mode: a single summary of all active timers and one alarm
// notice per finished step.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cookmode/internal/domain"
	"cookmode/internal/logger"
)

// Notice ids. The summary is a single fixed slot; alarm notices are
// derived from a base plus the step index, so alarms for different
// steps never collide and a second alarm for the same step overwrites
// the first.
const (
	summaryNoticeID = 1
	alarmNoticeBase = 2000
)

// DeepLink identifies the "open at step N of recipe R" entry point a
// summary tap resolves to.
type DeepLink struct {
	RecipeID  string
	StepIndex int
}

// Center owns the summary board and the set of pending alarm notices.
// The countdown engine calls Update/Clear on every state change; the
// alarm subsystem posts and dismisses alarm notices. Safe for
// concurrent use.
type Center struct {
	out domain.Notifier
	log *logger.Logger

	mu       sync.Mutex
	active   []domain.TimerState // sorted by step index
	deepLink *DeepLink
	alarms   map[int]int // step index -> notice id
}

// NewCenter creates a notification center rendering urgent notices
// through out.
func NewCenter(out domain.Notifier, log *logger.Logger) *Center {
	return &Center{
		out:    out,
		log:    log,
		alarms: make(map[int]int),
	}
}

// Update replaces the summary contents with the given active timers.
// The deep link is retargeted at the step with the lowest remaining
// time; ties resolve to the first encountered (undefined tie-break,
// stable within a run).
func (c *Center) Update(active []domain.TimerState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = append(c.active[:0], active...)
	sort.SliceStable(c.active, func(i, j int) bool {
		return c.active[i].StepIndex < c.active[j].StepIndex
	})

	c.deepLink = nil
	var best time.Duration
	for _, t := range c.active {
		if c.deepLink == nil || t.Remaining < best {
			best = t.Remaining
			c.deepLink = &DeepLink{RecipeID: t.RecipeID, StepIndex: t.StepIndex}
		}
	}

	c.log.Debug("notice %d: summary updated, %d timers", summaryNoticeID, len(c.active))
}

// Clear tears the summary down. Called when the active set empties or
// the user abandons cooking mode.
func (c *Center) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = c.active[:0]
	c.deepLink = nil
	c.log.Debug("notice %d: summary cleared", summaryNoticeID)
}

// Summary returns the current summary title and one line per timer.
// Empty title means no summary is showing.
func (c *Center) Summary() (title string, lines []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch n := len(c.active); n {
	case 0:
		return "", nil
	case 1:
		title = "1 Cooking Timer Active"
	default:
		title = fmt.Sprintf("%d Cooking Timers Active", n)
	}

	lines = make([]string, 0, len(c.active))
	for _, t := range c.active {
		line := fmt.Sprintf("Step %d — %s", t.StepIndex+1, domain.Clock(t.Remaining))
		if t.Status == domain.TimerPaused {
			line += " (paused)"
		}
		lines = append(lines, line)
	}
	return title, lines
}

// DeepLink returns the current summary tap target, or false when no
// timers are active.
func (c *Center) DeepLink() (DeepLink, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deepLink == nil {
		return DeepLink{}, false
	}
	return *c.deepLink, true
}

// PostAlarm posts the high-priority finished-timer notice for a step.
// A second alarm for the same step overwrites the first.
func (c *Center) PostAlarm(ctx context.Context, t domain.TimerState) {
	id := alarmNoticeBase + t.StepIndex

	c.mu.Lock()
	c.alarms[t.StepIndex] = id
	c.mu.Unlock()

	msg := fmt.Sprintf("Timer done — step %d. Say \"dismiss\" to stop the alarm.", t.StepIndex+1)
	if err := c.out.NotifyUrgent(ctx, msg); err != nil {
		c.log.Error("notify: alarm notice for step %d: %v", t.StepIndex+1, err)
	}
	c.log.Debug("notice %d: alarm posted for step %d", id, t.StepIndex+1)
}

// DismissAlarm cancels the alarm notice for one step. Unknown steps
// are a no-op.
func (c *Center) DismissAlarm(stepIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.alarms[stepIndex]; ok {
		delete(c.alarms, stepIndex)
		c.log.Debug("notice %d: alarm dismissed for step %d", id, stepIndex+1)
	}
}

// DismissAlarms cancels the alarm notices for the given steps. Used
// when abandoning cooking mode with alarms still pending.
func (c *Center) DismissAlarms(stepIndices []int) {
	for _, idx := range stepIndices {
		c.DismissAlarm(idx)
	}
}

// PendingAlarms returns the step indices with an alarm notice showing,
// sorted ascending.
func (c *Center) PendingAlarms() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int, 0, len(c.alarms))
	for idx := range c.alarms {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// RenderSummary formats the summary as a single string for terminal
// display, or "" when nothing is active.
func (c *Center) RenderSummary() string {
	title, lines := c.Summary()
	if title == "" {
		return ""
	}
	return title + "\n" + strings.Join(lines, "\n")
}
