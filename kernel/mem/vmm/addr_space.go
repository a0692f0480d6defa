package vmm

import (
	"fmt"
	"io"

	"nachos/kernel"
	"nachos/kernel/machine"
	"nachos/kernel/mem"
	"nachos/kernel/mem/pmm"
)

// UserStackSize is the number of bytes reserved at the top of every address
// space for the user stack.
const UserStackSize = 8 * int(mem.PageSize)

// AddrSpace is one user process's virtual address space: a page table, a
// shadow table recording where each page's contents currently live, and the
// open executable and (if swapping is enabled) swap file it loads pages
// from.
type AddrSpace struct {
	mgr        *Manager
	pid        int
	executable machine.File
	noff       noffHeader

	pages    []PageTableEntry
	shadow   []ShadowState
	numPages int

	tlb      *TLB
	swapName string
	swap     machine.File
}

// NewAddrSpace parses executable's NOFF header and builds an address space
// large enough for its code, initialized-data and uninitialized-data
// segments plus a user stack. If mgr.DemandPaging is false every page is
// loaded immediately; otherwise pages fault in on first access. If
// tlbSize is greater than zero the address space gets its own TLB.
func NewAddrSpace(mgr *Manager, pid int, executable machine.File, tlbSize int) (*AddrSpace, *kernel.Error) {
	header := make([]byte, 40)
	if _, err := executable.ReadAt(header, 0); err != nil && err != io.EOF {
		return nil, &kernel.Error{Module: errVMModule, Message: "reading object file header: " + err.Error()}
	}
	noff, kerr := parseNoffHeader(header)
	if kerr != nil {
		return nil, kerr
	}

	size := int(noff.Code.Size + noff.InitData.Size + noff.UninitData.Size) + UserStackSize
	numPages := (size + int(mem.PageSize) - 1) / int(mem.PageSize)

	as := &AddrSpace{
		mgr:        mgr,
		pid:        pid,
		executable: executable,
		noff:       noff,
		pages:      make([]PageTableEntry, numPages),
		shadow:     make([]ShadowState, numPages),
		numPages:   numPages,
	}
	if tlbSize > 0 {
		as.tlb = NewTLB(tlbSize)
	}
	for i := range as.pages {
		as.pages[i] = PageTableEntry{VirtualPage: i, PhysicalPage: pmm.InvalidFrame}
		as.shadow[i] = NotInMemory
	}

	if mgr.SwapEnabled {
		as.swapName = fmt.Sprintf("SWAP.%d", pid)
		if err := mgr.FS.Create(as.swapName, int64(numPages)*int64(mem.PageSize)); err != nil {
			return nil, &kernel.Error{Module: errVMModule, Message: "creating swap file: " + err.Error()}
		}
		swap, err := mgr.FS.Open(as.swapName)
		if err != nil {
			return nil, &kernel.Error{Module: errVMModule, Message: "opening swap file: " + err.Error()}
		}
		as.swap = swap
	}

	if !mgr.DemandPaging {
		for vpn := range as.pages {
			as.loadPage(vpn)
		}
	}

	return as, nil
}

// NumPages returns the number of virtual pages in this address space.
func (as *AddrSpace) NumPages() int { return as.numPages }

// InitialRegisters returns the register file a freshly-Exec'd process
// should start running with: PC at the entry point, NextPC one instruction
// ahead, and the stack pointer at the top of the address space (backed off
// slightly so an off-by-one store can't run past the mapped region).
func (as *AddrSpace) InitialRegisters() machine.Registers {
	return machine.Registers{
		PC:     0,
		NextPC: 4,
		Stack:  as.numPages*int(mem.PageSize) - 16,
	}
}

// Translate resolves a virtual address to a physical byte offset into
// mgr.Memory, faulting the containing page in if necessary.
func (as *AddrSpace) Translate(virtualAddr int) (int, *kernel.Error) {
	vpn := virtualAddr / int(mem.PageSize)
	offset := virtualAddr % int(mem.PageSize)
	pte, err := as.GetPage(vpn)
	if err != nil {
		return 0, err
	}
	return pte.PhysicalPage.Address() + offset, nil
}

// GetPage returns the page table entry for vpn, loading or swapping it in
// first if it isn't currently resident.
func (as *AddrSpace) GetPage(vpn int) (*PageTableEntry, *kernel.Error) {
	if vpn < 0 || vpn >= as.numPages {
		return nil, &kernel.Error{Module: errVMModule, Message: fmt.Sprintf("virtual page %d out of range [0,%d)", vpn, as.numPages)}
	}
	switch as.shadow[vpn] {
	case NotInMemory:
		as.loadPage(vpn)
	case SwappedOut:
		as.swapIn(vpn)
	case InMemory:
	}
	return &as.pages[vpn], nil
}

// loadPage reserves a frame for vpn and fills it from the executable's code
// and initialized-data segments (if either overlaps this page), zeroing any
// bytes neither segment covers -- the uninitialized-data and stack regions.
func (as *AddrSpace) loadPage(vpn int) {
	f := as.mgr.allocFrame(as.pid, vpn)
	page := as.mgr.page(f)
	kernel.Memset(page, 0)

	virtualAddr := vpn * int(mem.PageSize)
	as.copySegment(page, virtualAddr, as.noff.Code)
	as.copySegment(page, virtualAddr, as.noff.InitData)

	as.pages[vpn].PhysicalPage = f
	as.pages[vpn].Valid = true
	as.shadow[vpn] = InMemory
}

// copySegment copies whatever part of seg overlaps the page starting at
// pageVirtualAddr into page.
func (as *AddrSpace) copySegment(page []byte, pageVirtualAddr int, seg noffSegment) {
	if seg.Size == 0 {
		return
	}
	segStart := int(seg.VirtualAddr)
	segEnd := segStart + int(seg.Size)
	pageEnd := pageVirtualAddr + int(mem.PageSize)
	if segEnd <= pageVirtualAddr || segStart >= pageEnd {
		return
	}

	start := segStart
	if pageVirtualAddr > start {
		start = pageVirtualAddr
	}
	end := segEnd
	if pageEnd < end {
		end = pageEnd
	}
	n := end - start
	fileOffset := int64(seg.InFileAddr) + int64(start-segStart)
	pageOffset := start - pageVirtualAddr

	if _, err := as.executable.ReadAt(page[pageOffset:pageOffset+n], fileOffset); err != nil && err != io.EOF {
		kernel.Panic(&kernel.Error{Module: errVMModule, Message: "reading executable segment: " + err.Error()})
	}
}

// swapIn reserves a frame for vpn and reloads its contents from the swap
// file.
func (as *AddrSpace) swapIn(vpn int) {
	f := as.mgr.allocFrame(as.pid, vpn)
	page := as.mgr.page(f)
	virtualAddr := int64(vpn) * int64(mem.PageSize)

	if _, err := as.swap.ReadAt(page, virtualAddr); err != nil && err != io.EOF {
		kernel.Panic(&kernel.Error{Module: errVMModule, Message: "reading swap file: " + err.Error()})
	}

	as.pages[vpn].PhysicalPage = f
	as.pages[vpn].Valid = true
	as.shadow[vpn] = InMemory
}

// swapOut writes vpn's current contents to the swap file and returns its
// frame to the allocator. It is only ever called by Manager.MakeRoom on
// whatever address space the core map says owns the eviction victim.
func (as *AddrSpace) swapOut(vpn int) {
	kernel.Assert(as.pages[vpn].Valid, errVMModule, "swapOut called on vpn %d that is not resident", vpn)
	kernel.Assert(as.swap != nil, errVMModule, "swapOut called but this address space has no swap file")

	f := as.pages[vpn].PhysicalPage
	page := as.mgr.page(f)
	virtualAddr := int64(vpn) * int64(mem.PageSize)
	if _, err := as.swap.WriteAt(page, virtualAddr); err != nil {
		kernel.Panic(&kernel.Error{Module: errVMModule, Message: "writing swap file: " + err.Error()})
	}

	if as.tlb != nil {
		as.tlb.InvalidateFrame(f)
	}
	as.mgr.CoreMap.Clear(f)
	as.mgr.Loaded.Remove(f)
	as.mgr.Alloc.FreeFrame(f)

	as.pages[vpn].Valid = false
	as.pages[vpn].PhysicalPage = pmm.InvalidFrame
	as.shadow[vpn] = SwappedOut
}

// SaveState copies back any dirty, use bits the TLB accumulated into the
// page table. It is a no-op when this address space has no TLB.
func (as *AddrSpace) SaveState() {
	if as.tlb != nil {
		as.tlb.WritebackDirty(as.pages)
	}
}

// RestoreState invalidates the TLB so that stale translations from whatever
// ran before don't leak into this address space.
func (as *AddrSpace) RestoreState() {
	if as.tlb != nil {
		as.tlb.InvalidateAll()
	}
}

// TLB returns this address space's TLB, or nil if it doesn't have one.
func (as *AddrSpace) TLB() *TLB { return as.tlb }

// Destroy frees every resident frame and removes the swap file, if any. It
// must be called exactly once, when the owning process exits.
func (as *AddrSpace) Destroy() {
	for vpn := range as.pages {
		if !as.pages[vpn].Valid {
			continue
		}
		f := as.pages[vpn].PhysicalPage
		as.mgr.CoreMap.Clear(f)
		as.mgr.Loaded.Remove(f)
		as.mgr.Alloc.FreeFrame(f)
		as.pages[vpn].Valid = false
	}
	if as.swap != nil {
		as.swap.Close()
		as.mgr.FS.Remove(as.swapName)
	}
}
