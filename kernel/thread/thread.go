// Package thread is the kernel's notion of an executable control flow: a
// goroutine wrapped with the bookkeeping a user process needs on top of it
// -- a priority the scheduler's locks can donate to, an open-file table, an
// owned address space, and an exit status a joiner can wait on.
package thread

import (
	stdsync "sync"

	"nachos/kernel/machine"
	"nachos/kernel/mem/vmm"
	"nachos/kernel/sync"
)

// firstUserFD is the lowest file descriptor handed out by AddFile. 0 and 1
// are reserved for console input/output, matching the convention every
// syscall dispatcher in this kernel assumes.
const firstUserFD = 2

// Thread is one schedulable flow of control. Every Thread runs as its own
// goroutine; the fields below are the state that goroutine needs beyond
// what the Go runtime already tracks for it.
type Thread struct {
	name string

	mu              stdsync.Mutex
	priority        int
	initialPriority int

	space *vmm.AddrSpace
	files map[int]machine.File
	nextFD int

	exitStatus int
	exited     bool
	joinSem    *sync.Semaphore
}

// New returns a Thread with the given debug name and priority, not yet
// started.
func New(name string, priority int) *Thread {
	return &Thread{
		name:            name,
		priority:        priority,
		initialPriority: priority,
		files:           make(map[int]machine.File),
		nextFD:          firstUserFD,
		joinSem:         sync.NewSemaphore(name+".join", 0),
	}
}

// Name returns the thread's debug name.
func (t *Thread) Name() string { return t.name }

// Priority returns the thread's current (possibly donated) priority.
func (t *Thread) Priority() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.priority
}

// SetPriority overrides the thread's current priority, used by Lock.Acquire
// and Lock.Release to donate and restore priority.
func (t *Thread) SetPriority(p int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.priority = p
}

// InitialPriority returns the priority the thread was created with, which is
// what its priority is restored to once a donation-holding lock is
// released.
func (t *Thread) InitialPriority() int {
	return t.initialPriority
}

// SetAddrSpace installs the address space this thread runs user code in.
func (t *Thread) SetAddrSpace(space *vmm.AddrSpace) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.space = space
}

// AddrSpace returns the thread's address space, or nil for a thread that
// never runs user code (a purely kernel-side worker).
func (t *Thread) AddrSpace() *vmm.AddrSpace {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.space
}

// Fork starts fn running as the body of this thread, in its own goroutine.
// The caller is not blocked; use Join to wait for fn to return and call
// Exit.
func (t *Thread) Fork(fn func()) {
	go fn()
}

// AddFile installs f under a freshly allocated file descriptor and returns
// it.
func (t *Thread) AddFile(f machine.File) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	fd := t.nextFD
	t.nextFD++
	t.files[fd] = f
	return fd
}

// GetFile returns the file installed under fd, if any.
func (t *Thread) GetFile(fd int) (machine.File, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.files[fd]
	return f, ok
}

// RemoveFile closes and forgets the file installed under fd. It is a no-op
// if fd isn't open.
func (t *Thread) RemoveFile(fd int) {
	t.mu.Lock()
	f, ok := t.files[fd]
	if ok {
		delete(t.files, fd)
	}
	t.mu.Unlock()
	if ok {
		f.Close()
	}
}

// SetExitStatus records the value a later Join call should observe.
func (t *Thread) SetExitStatus(status int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exitStatus = status
}

// ExitStatus returns the value set by SetExitStatus.
func (t *Thread) ExitStatus() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exitStatus
}

// Exit tears down the thread's address space (if any), closes every open
// file, and wakes anyone blocked in Join. It is called at the end of the
// thread's body; any call after the first is a no-op.
func (t *Thread) Exit() {
	t.mu.Lock()
	space := t.space
	files := t.files
	t.files = nil
	already := t.exited
	t.exited = true
	t.mu.Unlock()

	if already {
		return
	}
	for _, f := range files {
		f.Close()
	}
	if space != nil {
		space.Destroy()
	}
	t.joinSem.V()
}

// Join blocks until the thread has Exited.
func (t *Thread) Join() {
	t.joinSem.P()
	// Allow more than one joiner to observe completion: re-signal so a
	// second concurrent Join doesn't block forever.
	t.joinSem.V()
}
