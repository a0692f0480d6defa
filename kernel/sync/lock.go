package sync

import (
	"sync"

	"nachos/kernel"
	"nachos/kernel/sched"
)

var errLockModule = "sync.lock"

// Lock is a mutex that donates priority to its holder. A well-known bug in
// implementations of this pattern has Acquire read the would-be-donor
// priority from the currently running thread instead of from the lock's
// owner, so donation compares the caller's priority against itself and never
// fires. This implementation reads the owner's priority from the owner.
type Lock struct {
	name string
	s    *Semaphore // primary binary semaphore; P'd by the acquirer, V'd by Release
	aux  *Semaphore // guards the donation check without disabling interrupts across a blocking P

	mu    sync.Mutex
	owner sched.Runnable

	sched *sched.Queue // re-homes a donated thread's position; may be nil in tests
}

// NewLock returns an unheld lock.
func NewLock(name string, q *sched.Queue) *Lock {
	return &Lock{
		name:  name,
		s:     NewSemaphore(name+".s", 1),
		aux:   NewSemaphore(name+".aux", 1),
		sched: q,
	}
}

// Name returns the lock's debug name.
func (l *Lock) Name() string { return l.name }

// IsHeldBy reports whether caller currently owns the lock.
func (l *Lock) IsHeldBy(caller sched.Runnable) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner == caller
}

// Acquire blocks until the lock is free and takes ownership. If the current
// owner has a numerically larger (lower) priority than caller, the owner's
// priority is raised to caller's for the duration of the hold -- priority
// donation.
func (l *Lock) Acquire(caller sched.Runnable) {
	kernel.Assert(!l.IsHeldBy(caller), errLockModule, "%s: Acquire called by the thread that already holds it", l.name)

	l.aux.P()
	l.mu.Lock()
	owner := l.owner
	l.mu.Unlock()
	if owner != nil {
		ownerPriority := owner.Priority()
		callerPriority := caller.Priority()
		if ownerPriority > callerPriority {
			owner.SetPriority(callerPriority)
			if l.sched != nil {
				l.sched.Move(owner, ownerPriority)
			}
		}
	}
	l.aux.V()

	l.s.P()
	l.mu.Lock()
	l.owner = caller
	l.mu.Unlock()
}

// Release gives up ownership, restoring the caller's initial priority if it
// had been raised by donation, and wakes the next acquirer.
func (l *Lock) Release(caller sched.Runnable) {
	kernel.Assert(l.IsHeldBy(caller), errLockModule, "%s: Release called by a thread that does not hold it", l.name)

	if caller.Priority() != caller.InitialPriority() {
		donated := caller.Priority()
		caller.SetPriority(caller.InitialPriority())
		if l.sched != nil {
			l.sched.Move(caller, donated)
		}
	}

	l.mu.Lock()
	l.owner = nil
	l.mu.Unlock()
	l.s.V()
}
