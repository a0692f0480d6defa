package syscall

import (
	"strings"

	"nachos/kernel"
	"nachos/kernel/machine"
	"nachos/kernel/mem/vmm"
	"nachos/kernel/proc"
	"nachos/kernel/thread"
)

// tokenize splits a command line into argv the way a shell's simplest
// possible word-splitting would: on runs of whitespace, with no quoting or
// escaping. "echo  hi   there" and "echo hi there" tokenize identically.
func tokenize(cmdline string) []string {
	return strings.Fields(cmdline)
}

// PrepareProcess opens name on fs, builds its address space, and registers
// it as a new process under a freshly allocated pid with argv recorded for
// later GetNArgs/GetArgN calls. It returns the new thread without starting
// it running -- Exec uses this to spawn a child; cmd/nachos uses it
// unchanged to bootstrap the very first process before the scheduler has
// anything else to run.
func PrepareProcess(vm *vmm.Manager, procs *proc.Table, args *proc.ArgStore, fs machine.FileSystem, name string, argv []string, priority, tlbSize int) (*thread.Thread, int, *kernel.Error) {
	f, ferr := fs.Open(name)
	if ferr != nil {
		return nil, -1, &kernel.Error{Module: errSyscallModule, Message: "opening executable " + name + ": " + ferr.Error()}
	}

	th := thread.New(name, priority)
	pid, ok := procs.AddProcess(th)
	if !ok {
		f.Close()
		return nil, -1, &kernel.Error{Module: errSyscallModule, Message: "process table is full"}
	}

	space, kerr := vmm.NewAddrSpace(vm, pid, f, tlbSize)
	if kerr != nil {
		procs.RemoveProcess(pid)
		return nil, -1, kerr
	}
	th.SetAddrSpace(space)
	if argv != nil {
		args.SetArgs(pid, argv)
	}
	return th, pid, nil
}
