// Package sched implements the kernel's ready queue.
// Threads are goroutines in this implementation (see kernel/thread), so the
// queue's job is not to decide who the Go runtime schedules next -- it is to
// give kernel/sync.Lock something to call Move on when priority donation
// needs to re-sort a thread's position, and to give tests a way to observe
// FIFO hand-off order the way the original ReadyToRun/FindNextToRun pair did.
package sched

import "sync"

// Runnable is anything the scheduler's ready queue can hold: a thread, in
// this kernel. Declaring the minimal interface here instead of depending on
// kernel/thread directly keeps the dependency arrow pointing one way (thread
// depends on sched, not back) -- a "polymorphic scheduling
// entities" note.
type Runnable interface {
	Name() string
	Priority() int
	SetPriority(int)
	InitialPriority() int
}

// Queue is a FIFO ready queue.
type Queue struct {
	mu    sync.Mutex
	items []Runnable
}

// New returns an empty ready queue.
func New() *Queue {
	return &Queue{}
}

// ReadyToRun appends r to the back of the queue.
func (q *Queue) ReadyToRun(r Runnable) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, r)
}

// FindNextToRun removes and returns the thread at the front of the queue.
func (q *Queue) FindNextToRun() (Runnable, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	r := q.items[0]
	q.items = q.items[1:]
	return r, true
}

// Move removes r from wherever it currently sits in the queue (it may not be
// present at all, if it isn't currently ready) and re-appends it at the
// back. oldPriority is accepted for symmetry with the original
// Scheduler::Move signature; this FIFO queue doesn't sort by priority so it
// is otherwise unused here. Priority affects neither ready-queue position
// nor the order in which kernel/sync.Lock hands the lock to waiters, which
// is FIFO.
func (q *Queue) Move(r Runnable, oldPriority int) {
	_ = oldPriority
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, item := range q.items {
		if item == r {
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	q.items = append(q.items, r)
}

// Len reports how many runnables are currently queued, for tests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
