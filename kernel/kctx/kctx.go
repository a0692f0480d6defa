// Package kctx wires together one running kernel instance: the scheduler,
// the physical frame allocator and the virtual memory manager built on top
// of it, the process table and argument store, the synchronized console,
// and the simulated machine everything else runs against. It exists so
// that nothing in this kernel reaches for a package-level global -- every
// component is constructed once, here, and handed to whoever needs it.
package kctx

import (
	"nachos/kernel"
	"nachos/kernel/console"
	"nachos/kernel/interrupt"
	"nachos/kernel/machine"
	"nachos/kernel/mem/pmm"
	"nachos/kernel/mem/vmm"
	"nachos/kernel/proc"
	"nachos/kernel/sched"
	"nachos/kernel/syscall"
	"nachos/kernel/thread"
)

// Config selects the knobs a kernel instance is built with.
type Config struct {
	// NumFrames is the size of the physical frame pool.
	NumFrames int

	// DemandPaging loads pages on first access instead of eagerly at Exec
	// time.
	DemandPaging bool

	// SwapEnabled allows MakeRoom to evict a resident page to disk when the
	// frame pool is dry; without it, running out of frames is fatal.
	SwapEnabled bool

	// TLBSize is the number of entries each address space's software TLB
	// holds. Zero disables the TLB: every translation goes straight
	// through the page table.
	TLBSize int
}

// Context is everything a running kernel needs, constructed once and
// threaded through the syscall dispatcher and the CLI driver.
type Context struct {
	Config Config

	Sched     *sched.Queue
	Interrupt *interrupt.Controller
	Machine   machine.Machine
	FS        machine.FileSystem
	VM        *vmm.Manager
	Procs     *proc.Table
	Args      *proc.ArgStore
	Console   *console.Synch
	Dispatch  *syscall.Dispatcher
}

// New builds a fully wired Context: a frame allocator and virtual memory
// manager sized per cfg, a process table and argument store, a console
// synchronized against dev, and a syscall dispatcher with
// Manager.Resolve closed over the process table so that page-fault eviction
// can find the address space it needs to swap out. The manager's frames are
// slices of m.Memory(), so pages loaded by an address space and bytes copied
// by the dispatcher's user-memory helpers are the same bytes; m's memory
// must hold at least cfg.NumFrames pages.
func New(cfg Config, m machine.Machine, fs machine.FileSystem, dev machine.ConsoleDevice) *Context {
	q := sched.New()
	alloc := pmm.NewAllocator(cfg.NumFrames)
	vm := vmm.NewManager(alloc, fs, cfg.DemandPaging, cfg.SwapEnabled)
	kernel.Assert(len(m.Memory()) >= len(vm.Memory), "kctx", "machine memory of %d bytes cannot hold %d frames", len(m.Memory()), cfg.NumFrames)
	vm.Memory = m.Memory()
	procs := proc.NewTable()
	args := proc.NewArgStore()
	cons := console.NewSynch(dev, q)

	vm.Resolve = func(pid int) (*vmm.AddrSpace, bool) {
		th, ok := procs.GetProcess(pid)
		if !ok {
			return nil, false
		}
		return th.AddrSpace(), true
	}

	return &Context{
		Config:    cfg,
		Sched:     q,
		Interrupt: interrupt.New(),
		Machine:   m,
		FS:        fs,
		VM:        vm,
		Procs:     procs,
		Args:      args,
		Console:   cons,
		Dispatch: &syscall.Dispatcher{
			Machine: m,
			FS:      fs,
			Console: cons,
			Procs:   procs,
			Args:    args,
			VM:      vm,
			TLBSize: cfg.TLBSize,
		},
	}
}

// Spawn bootstraps a new top-level process running name with argv, the way
// a shell's first command or cmd/nachos's boot program does. It is a thin
// wrapper over syscall.PrepareProcess so callers outside kernel/syscall
// don't need to reach past kctx into that package directly. Process-table
// registration is done with interrupts disabled, the same protection every
// other piece of shared kernel state gets.
func (c *Context) Spawn(name string, argv []string, priority int) (*thread.Thread, int, *kernel.Error) {
	old := c.Interrupt.SetLevel(interrupt.Off)
	defer c.Interrupt.SetLevel(old)

	return syscall.PrepareProcess(c.VM, c.Procs, c.Args, c.FS, name, argv, priority, c.Config.TLBSize)
}
