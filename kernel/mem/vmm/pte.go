package vmm

import "nachos/kernel/mem/pmm"

// PageTableEntry translates one virtual page of an address space to a
// physical frame, along with its access bits. ReadOnly is carried along
// but no kernel code path checks it.
type PageTableEntry struct {
	VirtualPage  int
	PhysicalPage pmm.Frame
	Valid        bool
	ReadOnly     bool
	Use          bool
	Dirty        bool
}

// ShadowState tracks where a virtual page's contents currently live, for
// address spaces with demand paging enabled. The page table entry alone
// can't distinguish "never loaded" from "loaded once, then swapped out" --
// both leave Valid false -- so GetPage consults the shadow table to decide
// whether to load from the executable or swap back in from disk.
type ShadowState int

const (
	// NotInMemory means this page has never been loaded; it must be read
	// from the executable (or zero-filled, for the uninitialized-data
	// and stack regions the executable has no bytes for).
	NotInMemory ShadowState = iota
	// InMemory means PhysicalPage currently holds this page's contents.
	InMemory
	// SwappedOut means this page was loaded at least once and has since
	// been written to the process's swap file.
	SwappedOut
)
