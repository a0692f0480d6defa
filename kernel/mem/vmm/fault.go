package vmm

import (
	"nachos/kernel/klog"
	"nachos/kernel/mem"
)

var faultLog = klog.For("vmm")

// HandlePageFault resolves a TLB miss or not-present fault for virtualAddr
// against as, loading or swapping the containing page in as needed. It
// never touches the faulting instruction's program counter, and neither
// does the dispatcher's PageFaultException path, so the faulting
// instruction is executed again once the page is resident rather than
// skipped.
func HandlePageFault(as *AddrSpace, virtualAddr int) *PageTableEntry {
	vpn := virtualAddr / int(mem.PageSize)
	pte, err := as.GetPage(vpn)
	if err != nil {
		faultLog.WithField("vpn", vpn).WithField("err", err).Error("unrecoverable page fault")
		return nil
	}
	if as.tlb != nil {
		as.tlb.Insert(vpn, *pte)
	}
	return pte
}
