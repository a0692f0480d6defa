package sync

import "nachos/kernel/sched"

// fakeThread is a minimal sched.Runnable used to exercise kernel/sync without
// depending on kernel/thread (which itself depends on kernel/sync -- a real
// *thread.Thread can't be used here without an import cycle).
type fakeThread struct {
	name            string
	priority        int
	initialPriority int
}

func newFakeThread(name string, priority int) *fakeThread {
	return &fakeThread{name: name, priority: priority, initialPriority: priority}
}

func (f *fakeThread) Name() string        { return f.name }
func (f *fakeThread) Priority() int        { return f.priority }
func (f *fakeThread) SetPriority(p int)    { f.priority = p }
func (f *fakeThread) InitialPriority() int { return f.initialPriority }

var _ sched.Runnable = (*fakeThread)(nil)
