// Package proc tracks live user processes by pid: which Thread backs each
// one, and the argv each was Exec'd with.
package proc

import (
	"sync"

	"nachos/kernel/thread"
)

// MaxProcesses bounds how many processes can exist at once. Real memory is
// the actual limit in this kernel; this cap exists so Exec fails cleanly
// with a small, easy-to-reason-about process table instead of growing
// without bound.
const MaxProcesses = 128

// Table assigns small integer pids to threads and looks them up in either
// direction.
type Table struct {
	mu      sync.Mutex
	threads [MaxProcesses]*thread.Thread
}

// NewTable returns an empty process table.
func NewTable() *Table {
	return &Table{}
}

// AddProcess assigns the lowest free pid to th and returns it, or returns
// false if the table is full.
func (t *Table) AddProcess(th *thread.Thread) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for pid := 0; pid < MaxProcesses; pid++ {
		if t.threads[pid] == nil {
			t.threads[pid] = th
			return pid, true
		}
	}
	return -1, false
}

// GetProcess returns the thread registered under pid, if any.
func (t *Table) GetProcess(pid int) (*thread.Thread, bool) {
	if pid < 0 || pid >= MaxProcesses {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	th := t.threads[pid]
	return th, th != nil
}

// GetPID returns the pid th was registered under, if it's still registered.
func (t *Table) GetPID(th *thread.Thread) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for pid, v := range t.threads {
		if v == th {
			return pid, true
		}
	}
	return -1, false
}

// RemoveProcess frees pid for reuse, usually once its thread has exited and
// been joined by everyone who needed its exit status.
func (t *Table) RemoveProcess(pid int) {
	if pid < 0 || pid >= MaxProcesses {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.threads[pid] = nil
}
