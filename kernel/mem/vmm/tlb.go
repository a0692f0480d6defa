package vmm

import (
	"math/rand"

	"nachos/kernel/mem/pmm"
)

// tlbEntry caches one page table entry under the virtual page it translates.
type tlbEntry struct {
	valid       bool
	virtualPage int
	pte         PageTableEntry
}

// TLB is a fixed-size software translation lookaside buffer. A real TLB is
// filled and consulted by hardware on every memory reference; here,
// HandlePageFault inserts the entry for every page it resolves, and eviction
// and RestoreState invalidate entries. The syscall dispatcher's user-memory
// copy helpers do not consult it: they translate through
// AddrSpace.Translate and the page table.
type TLB struct {
	entries []tlbEntry
}

// NewTLB returns an empty TLB with the given number of slots.
func NewTLB(size int) *TLB {
	return &TLB{entries: make([]tlbEntry, size)}
}

// Size returns the number of TLB slots.
func (t *TLB) Size() int { return len(t.entries) }

// Lookup returns the cached translation for vpn, if present.
func (t *TLB) Lookup(vpn int) (PageTableEntry, bool) {
	for _, e := range t.entries {
		if e.valid && e.virtualPage == vpn {
			return e.pte, true
		}
	}
	return PageTableEntry{}, false
}

// Insert caches pte under vpn, preferring an invalid slot; if every slot is
// occupied it evicts a uniformly random one, since the TLB has no usage
// history to pick a better victim from.
func (t *TLB) Insert(vpn int, pte PageTableEntry) {
	for i := range t.entries {
		if !t.entries[i].valid {
			t.entries[i] = tlbEntry{valid: true, virtualPage: vpn, pte: pte}
			return
		}
	}
	victim := rand.Intn(len(t.entries))
	t.entries[victim] = tlbEntry{valid: true, virtualPage: vpn, pte: pte}
}

// InvalidateAll clears every slot, for use on a context switch into a
// different address space.
func (t *TLB) InvalidateAll() {
	for i := range t.entries {
		t.entries[i].valid = false
	}
}

// InvalidateFrame clears any entry currently pointing at f, used when f is
// about to be evicted or freed out from under whatever page last occupied
// it.
func (t *TLB) InvalidateFrame(f pmm.Frame) {
	for i := range t.entries {
		if t.entries[i].valid && t.entries[i].pte.PhysicalPage == f {
			t.entries[i].valid = false
		}
	}
}

// WritebackDirty copies the dirty bit and the use bit of every valid, dirty
// entry back into pages, indexed by virtual page number; entries that are
// not dirty are left alone. It must run
// before a context switch evicts translations an address space's own page
// table doesn't know are dirty yet.
func (t *TLB) WritebackDirty(pages []PageTableEntry) {
	for _, e := range t.entries {
		if e.valid && e.pte.Dirty {
			pages[e.virtualPage].Dirty = true
			pages[e.virtualPage].Use = e.pte.Use
		}
	}
}
