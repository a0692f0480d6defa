// Package syscall is the trap handler every user-mode exception funnels
// through: syscalls (Halt, Create, Open, Close, Read, Write, Exit, Join,
// Exec, GetNArgs, GetArgN), demand-paging faults, and the fatal exceptions
// that have no recovery (a write to a read-only page, a bad address, an
// unknown trap code).
package syscall

import (
	"fmt"

	"nachos/kernel"
	"nachos/kernel/console"
	"nachos/kernel/klog"
	"nachos/kernel/machine"
	"nachos/kernel/mem/vmm"
	"nachos/kernel/proc"
	"nachos/kernel/thread"
)

var errSyscallModule = "syscall"

var log = klog.For("syscall")

// maxUserString bounds how many bytes readStrFromUsr will copy out of user
// memory before giving up -- a user program that never null-terminates a
// string can't make the kernel walk off into memory it doesn't own.
const maxUserString = 256

// maxUserBuffer bounds a single Read/Write/GetArgN transfer for the same
// reason: the size a user program hands the kernel is untrusted input.
const maxUserBuffer = 4096

// Dispatcher holds every piece of kernel state a syscall body might need to
// touch: the simulated CPU, the disk-backed file system, the console, the
// process table and argument store, and the virtual memory manager that
// resolves page faults.
type Dispatcher struct {
	Machine machine.Machine
	FS      machine.FileSystem
	Console *console.Synch
	Procs   *proc.Table
	Args    *proc.ArgStore
	VM      *vmm.Manager
	TLBSize int

	// HaltFn is invoked by the Halt syscall, after it has been logged. It is
	// nil in tests; cmd/nachos wires it to a clean process exit.
	HaltFn func()
}

// Exception types an exception handler dispatches on, mirroring the
// original MIPS exception codes this kernel's trap numbers are modeled
// after.
const (
	SyscallException = iota
	PageFaultException
	ReadOnlyException
	BusErrorException
	AddressErrorException
	OverflowException
	IllegalInstrException
)

// HandleException dispatches one trap for th. badVAddr is only meaningful
// for PageFaultException and the address-related exceptions; it is ignored
// otherwise. It returns true if th has finished running (Exit or Halt) and
// should not be resumed.
func (d *Dispatcher) HandleException(th *thread.Thread, excType, badVAddr int) (halted bool) {
	switch excType {
	case SyscallException:
		return d.HandleSyscall(th)
	case PageFaultException:
		as := th.AddrSpace()
		kernel.Assert(as != nil, errSyscallModule, "page fault in a thread with no address space")
		if vmm.HandlePageFault(as, badVAddr) == nil {
			kernel.Panic(&kernel.Error{Module: errSyscallModule, Message: fmt.Sprintf("unrecoverable page fault at 0x%x", badVAddr)})
		}
		return false
	default:
		kernel.Panic(&kernel.Error{Module: errSyscallModule, Message: fmt.Sprintf("fatal exception %d at 0x%x", excType, badVAddr)})
		return true
	}
}

// HandleSyscall reads the syscall number out of the Result register (the
// same register the return value is later written into, matching the
// calling convention this machine's trap instruction uses), dispatches to
// the matching handler, and advances the program counter past the
// syscall instruction -- except for Halt and Exit, after which there is no
// more user code left to run.
func (d *Dispatcher) HandleSyscall(th *thread.Thread) (halted bool) {
	regs := d.Machine.Registers()
	scNum := regs.Result
	log.WithField("num", scNum).WithField("thread", th.Name()).Debug("syscall entry")

	switch scNum {
	case Halt:
		d.sysHalt()
		return true
	case Create:
		regs.Result = d.sysCreate(th, regs)
	case Open:
		regs.Result = d.sysOpen(th, regs)
	case Close:
		d.sysClose(th, regs)
	case Read:
		regs.Result = d.sysRead(th, regs)
	case Write:
		d.sysWrite(th, regs)
	case Exit:
		d.sysExit(th, regs)
		return true
	case Join:
		regs.Result = d.sysJoin(regs)
	case Exec:
		regs.Result = d.sysExec(th, regs)
	case GetNArgs:
		regs.Result = d.sysGetNArgs(th)
	case GetArgN:
		regs.Result = d.sysGetArgN(th, regs)
	default:
		kernel.Panic(&kernel.Error{Module: errSyscallModule, Message: fmt.Sprintf("unknown syscall number %d", scNum)})
	}

	advancePC(&regs)
	d.Machine.SetRegisters(regs)
	return false
}

// advancePC moves PC/NextPC forward by one instruction, the way returning
// from a syscall trap normally would.
func advancePC(regs *machine.Registers) {
	regs.PC = regs.NextPC
	regs.NextPC += 4
}

// readStrFromUsr copies a null-terminated string out of as's virtual
// address space starting at addr.
func (d *Dispatcher) readStrFromUsr(as *vmm.AddrSpace, addr int) string {
	buf := make([]byte, 0, 32)
	for {
		phys, err := as.Translate(addr)
		kernel.Assert(err == nil, errSyscallModule, "reading user string at 0x%x: %v", addr, err)
		b := d.Machine.Memory()[phys]
		if b == 0 {
			break
		}
		buf = append(buf, b)
		kernel.Assert(len(buf) <= maxUserString, errSyscallModule, "user string at 0x%x exceeds %d bytes", addr, maxUserString)
		addr++
	}
	return string(buf)
}

// writeStrToUsr writes s followed by a null terminator into as starting at
// addr.
func (d *Dispatcher) writeStrToUsr(as *vmm.AddrSpace, addr int, s string) {
	d.writeBuffToUsr(as, addr, append([]byte(s), 0))
}

// readBuffFromUsr copies n bytes out of as starting at addr.
func (d *Dispatcher) readBuffFromUsr(as *vmm.AddrSpace, addr, n int) []byte {
	kernel.Assert(n <= maxUserBuffer, errSyscallModule, "requested transfer of %d bytes exceeds the %d byte limit", n, maxUserBuffer)
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		phys, err := as.Translate(addr + i)
		kernel.Assert(err == nil, errSyscallModule, "reading user buffer at 0x%x: %v", addr+i, err)
		buf[i] = d.Machine.Memory()[phys]
	}
	return buf
}

// writeBuffToUsr writes buf into as starting at addr.
func (d *Dispatcher) writeBuffToUsr(as *vmm.AddrSpace, addr int, buf []byte) {
	kernel.Assert(len(buf) <= maxUserBuffer, errSyscallModule, "writing %d bytes exceeds the %d byte limit", len(buf), maxUserBuffer)
	for i, b := range buf {
		phys, err := as.Translate(addr + i)
		kernel.Assert(err == nil, errSyscallModule, "writing user buffer at 0x%x: %v", addr+i, err)
		d.Machine.Memory()[phys] = b
	}
}
