package console

import (
	"nachos/kernel/machine"
	"nachos/kernel/sched"
	"nachos/kernel/sync"
)

// Synch serializes access to a machine.ConsoleDevice with a Lock, so that
// bytes written or read by concurrent processes don't interleave mid
// character. The original design drove GetChar/PutChar through a pair of
// semaphores signaled by the hardware's read-available/write-done
// interrupts; a hosted console has no interrupt to wait for; GetChar and
// PutChar just block synchronously, so a single lock around each call gives
// the same serialization guarantee without the callback machinery.
type Synch struct {
	dev  machine.ConsoleDevice
	lock *sync.Lock
}

// NewSynch returns a Synch guarding dev.
func NewSynch(dev machine.ConsoleDevice, q *sched.Queue) *Synch {
	return &Synch{dev: dev, lock: sync.NewLock("console", q)}
}

// GetChar reads one byte, serialized against concurrent callers.
func (s *Synch) GetChar(caller sched.Runnable) byte {
	s.lock.Acquire(caller)
	defer s.lock.Release(caller)
	return s.dev.GetChar()
}

// PutChar writes one byte, serialized against concurrent callers.
func (s *Synch) PutChar(caller sched.Runnable, b byte) {
	s.lock.Acquire(caller)
	defer s.lock.Release(caller)
	s.dev.PutChar(b)
}
