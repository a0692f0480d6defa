// Package sync provides the synchronization primitives the rest of the
// kernel is built on: counting semaphores, a priority-inheriting lock,
// Mesa-style condition variables and a single-slot rendezvous port. This
// generalizes a busy-wait Spinlock into real blocking primitives built on
// goroutines and channels instead of a hand-rolled coroutine scheduler.
package sync

import "sync"

// waiter is a one-shot wake-up channel: closing it wakes whoever is parked
// receiving from it. Every blocking primitive in this package -- a
// semaphore's waiter queue, a condition variable's per-waiter slot, a port's
// peer -- is built from the same "channel as a single wake-up" idiom, which
// is a polymorphic scheduling entity without needing an
// actual tagged union: anything that can be closed is "a thing that can be
// made runnable".
type waiter chan struct{}

// Semaphore is a counting semaphore with a FIFO waiter queue. P and V follow
// the classic contract: V always increments the value and wakes at most one
// waiter; a woken P re-checks the value in a loop rather than assuming it
// owns the unit of value the V produced, because another P can race in and
// consume it first.
type Semaphore struct {
	name    string
	mu      sync.Mutex
	value   int
	waiters []waiter
}

// NewSemaphore returns a semaphore with the given debug name and initial
// value.
func NewSemaphore(name string, initial int) *Semaphore {
	return &Semaphore{name: name, value: initial}
}

// Name returns the semaphore's debug name.
func (s *Semaphore) Name() string { return s.name }

// P waits until the semaphore's value is greater than zero, then decrements
// it.
func (s *Semaphore) P() {
	s.mu.Lock()
	for s.value == 0 {
		w := make(waiter)
		s.waiters = append(s.waiters, w)
		s.mu.Unlock()
		<-w
		s.mu.Lock()
	}
	s.value--
	s.mu.Unlock()
}

// V increments the semaphore's value and wakes the oldest waiter, if any.
func (s *Semaphore) V() {
	s.mu.Lock()
	if len(s.waiters) > 0 {
		w := s.waiters[0]
		s.waiters = s.waiters[1:]
		close(w)
	}
	s.value++
	s.mu.Unlock()
}

// Value returns the current value. Intended for tests checking the
// quiescent-state invariant, not for production
// control flow -- reading it and then acting on it outside of P/V is
// inherently racy.
func (s *Semaphore) Value() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Waiting returns the number of threads currently parked in P.
func (s *Semaphore) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}
