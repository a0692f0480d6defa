package sync

import (
	"sync"

	"nachos/kernel/sched"
)

// condWaiter pairs a per-waiter semaphore with the thread it belongs to, so
// the FIFO list is labelled with the waiting thread --
// useful for logging and for tests asserting wake order.
type condWaiter struct {
	owner sched.Runnable
	sem   *Semaphore
}

// Condition is a Mesa-style condition variable: Wait appends a fresh,
// initially-empty per-waiter semaphore to a FIFO list, releases the
// associated lock, blocks on that semaphore, and re-acquires the lock before
// returning. Signal/Broadcast only make a waiter runnable again; they never
// guarantee the woken thread acquires the lock next, so every Wait caller
// must recheck its predicate in a loop.
type Condition struct {
	mu      sync.Mutex
	waiters []condWaiter
}

// NewCondition returns an empty condition variable.
func NewCondition() *Condition {
	return &Condition{}
}

// Wait releases lock, blocks until Signal or Broadcast wakes this waiter,
// then re-acquires lock before returning.
func (c *Condition) Wait(lock *Lock, caller sched.Runnable) {
	w := condWaiter{owner: caller, sem: NewSemaphore("cond-waiter", 0)}
	c.mu.Lock()
	c.waiters = append(c.waiters, w)
	c.mu.Unlock()

	lock.Release(caller)
	w.sem.P()
	lock.Acquire(caller)
}

// Signal wakes the oldest waiter, if any.
func (c *Condition) Signal() {
	c.mu.Lock()
	var w *condWaiter
	if len(c.waiters) > 0 {
		w = &c.waiters[0]
		c.waiters = c.waiters[1:]
	}
	c.mu.Unlock()
	if w != nil {
		w.sem.V()
	}
}

// Broadcast wakes every current waiter, in FIFO order.
func (c *Condition) Broadcast() {
	c.mu.Lock()
	pending := c.waiters
	c.waiters = nil
	c.mu.Unlock()
	for _, w := range pending {
		w.sem.V()
	}
}

// Waiting returns the number of threads currently parked in Wait.
func (c *Condition) Waiting() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
