package vmm

import (
	"nachos/kernel"
	"nachos/kernel/machine"
	"nachos/kernel/mem"
	"nachos/kernel/mem/pmm"
)

var errVMModule = "vmm"

// Manager is the shared state every AddrSpace in the system draws frames
// from and pages out to: the frame allocator, the core map recording which
// (pid, vpn) pair owns each resident frame, the FIFO of resident frames
// eviction picks from, and the byte-addressable physical RAM those frames
// are slices of.
type Manager struct {
	Alloc   *pmm.Allocator
	CoreMap *pmm.CoreMap
	Loaded  *pmm.Loaded
	Memory  []byte
	FS      machine.FileSystem

	// Resolve maps a pid back to the *AddrSpace that owns it, so MakeRoom
	// can call SwapOut on whichever address space the eviction victim
	// belongs to. It is injected by whatever owns the process table
	// instead of being looked up directly, so this package never needs
	// to import the process table package.
	Resolve func(pid int) (*AddrSpace, bool)

	// DemandPaging, if false, loads every page of an address space
	// eagerly at construction instead of faulting pages in one at a
	// time.
	DemandPaging bool

	// SwapEnabled, if false, a MakeRoom call (the allocator is out of
	// frames and a page must be loaded) is a fatal resource-exhaustion
	// error instead of an eviction.
	SwapEnabled bool
}

// NewManager returns a Manager backed by alloc's frame pool. Memory is sized
// to exactly cover every frame alloc can hand out.
func NewManager(alloc *pmm.Allocator, fs machine.FileSystem, demandPaging, swapEnabled bool) *Manager {
	return &Manager{
		Alloc:        alloc,
		CoreMap:      pmm.NewCoreMap(),
		Loaded:       pmm.NewLoaded(),
		Memory:       make([]byte, alloc.NumFrames()*int(mem.PageSize)),
		FS:           fs,
		DemandPaging: demandPaging,
		SwapEnabled:  swapEnabled,
	}
}

// page returns the byte slice of m.Memory backing frame f.
func (m *Manager) page(f pmm.Frame) []byte {
	start := int(f) * int(mem.PageSize)
	return m.Memory[start : start+int(mem.PageSize)]
}

// allocFrame reserves a frame for vpn on behalf of pid, evicting the
// oldest-loaded resident page if the pool is dry and swapping is enabled.
func (m *Manager) allocFrame(pid, vpn int) pmm.Frame {
	f, ok := m.Alloc.AllocFrame()
	if !ok {
		kernel.Assert(m.SwapEnabled, errVMModule, "out of physical frames and swapping is disabled")
		f = m.MakeRoom()
	}
	m.CoreMap.Set(f, pid, vpn)
	m.Loaded.Push(f)
	return f
}

// MakeRoom evicts the oldest-loaded resident frame by swapping its owning
// page out to disk, then reserves and returns a newly-free frame. It does
// not promise to return the exact frame number it evicted -- only that the
// allocator has at least one free frame once it returns.
func (m *Manager) MakeRoom() pmm.Frame {
	victim, ok := m.Loaded.Oldest()
	kernel.Assert(ok, errVMModule, "MakeRoom called with nothing resident to evict")
	owner, ok := m.CoreMap.Owner(victim)
	kernel.Assert(ok, errVMModule, "evicted frame %d has no core map owner", victim)
	as, ok := m.Resolve(owner.PID)
	kernel.Assert(ok, errVMModule, "evicted frame %d belongs to pid %d, which no longer exists", victim, owner.PID)
	as.swapOut(owner.VPN)

	f, ok := m.Alloc.AllocFrame()
	kernel.Assert(ok, errVMModule, "frame freed by eviction vanished before it could be reused")
	return f
}
