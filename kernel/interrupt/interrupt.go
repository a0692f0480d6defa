// Package interrupt models an interrupt-enable flag. Callers that disable
// it around a critical section restore whatever level was previously in
// effect -- never blindly re-enabling -- because a caller may already be
// inside a disabled region. kctx.Context.Spawn is the only kernel code that
// disables it; the primitives in kernel/sync do not use it and get their
// atomicity from Go mutexes and channels instead.
package interrupt

import "nachos/kernel/sync"

// Level is the interrupt-enable state of the simulated CPU.
type Level bool

const (
	// Off disables interrupts; no context switch may occur while Off.
	Off Level = false
	// On allows the scheduler to preempt the running thread.
	On Level = true
)

// Controller owns the single interrupt-enable flag. A hosted Go process has
// no real interrupts to mask, so Controller's job is purely bookkeeping: it
// records the level its callers disable and restore, while a
// real Spinlock underneath does the actual atomicity work real concurrent
// goroutines need -- busy-wait is the right tradeoff here since the flag is
// held only for the instant it takes to read or swap it, never across a
// blocking call.
type Controller struct {
	mu    sync.Spinlock
	level Level
}

// New returns a Controller with interrupts enabled, matching a freshly
// booted kernel.
func New() *Controller {
	return &Controller{level: On}
}

// SetLevel sets the interrupt level to level and returns the previous one.
// Callers must restore the level they observed, not blindly turn interrupts
// back on.
func (c *Controller) SetLevel(level Level) Level {
	c.mu.Acquire()
	defer c.mu.Release()
	old := c.level
	c.level = level
	return old
}

// Enabled reports whether interrupts are currently on.
func (c *Controller) Enabled() bool {
	c.mu.Acquire()
	defer c.mu.Release()
	return bool(c.level)
}
