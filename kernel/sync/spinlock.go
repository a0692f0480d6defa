package sync

import (
	"runtime"
	"sync/atomic"
)

// yieldFn is called between failed acquire attempts so a busy Spinlock
// doesn't starve the goroutine holding it on a single-core test run.
// Swappable in tests; defaults to runtime.Gosched.
var yieldFn = runtime.Gosched

// Spinlock is a busy-wait mutex: a caller blocked on Acquire keeps retrying
// instead of parking on a channel. kernel/interrupt uses one to guard its
// enable/disable flag, since that flag is read and written far more often
// than it is ever contended and never held across a blocking call.
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired by the currently active
// goroutine. Re-acquiring a lock already held by the caller deadlocks, same
// as any non-reentrant mutex.
func (l *Spinlock) Acquire() {
	for !l.TryToAcquire() {
		yieldFn()
	}
}

// TryToAcquire attempts to acquire the lock without blocking, returning
// true if it succeeded.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.CompareAndSwapUint32(&l.state, 0, 1)
}

// Release relinquishes a held lock. Calling Release while the lock is free
// has no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}
