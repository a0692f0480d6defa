package syscall

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nachos/kernel/console"
	"nachos/kernel/machine"
	"nachos/kernel/mem"
	"nachos/kernel/mem/pmm"
	"nachos/kernel/mem/vmm"
	"nachos/kernel/proc"
	"nachos/kernel/sched"
	"nachos/kernel/thread"
)

// noffSeg/noffHdr mirror the private layout vmm.parseNoffHeader expects;
// building one here keeps this package's tests from needing an exported
// constructor the real kernel has no other use for.
type noffSeg struct{ Size, VirtualAddr, InFileAddr int32 }
type noffHdr struct {
	Magic                      int32
	Code, InitData, UninitData noffSeg
}

func buildExecutable(code []byte) []byte {
	h := noffHdr{Magic: 0xbadfad, Code: noffSeg{Size: int32(len(code)), InFileAddr: 40}}
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, &h)
	buf.Write(code)
	return buf.Bytes()
}

func newTestDispatcher(t *testing.T, out *bytes.Buffer) (*Dispatcher, *thread.Thread, *machine.Fake) {
	t.Helper()
	m := machine.NewFake(64 * int(mem.PageSize))
	fs := machine.NewFakeFS()
	alloc := pmm.NewAllocator(64)
	vm := vmm.NewManager(alloc, fs, false, false)
	procs := proc.NewTable()
	args := proc.NewArgStore()
	dev := console.NewDevice(strings.NewReader(""), out)
	cons := console.NewSynch(dev, sched.New())

	d := &Dispatcher{Machine: m, FS: fs, Console: cons, Procs: procs, Args: args, VM: vm}

	code := make([]byte, int(mem.PageSize))
	fs.WriteFile("prog", buildExecutable(code))
	th, pid, kerr := PrepareProcess(vm, procs, args, fs, "prog", []string{"prog"}, 5, 0)
	require.Nil(t, kerr)
	vm.Resolve = func(p int) (*vmm.AddrSpace, bool) {
		if p == pid {
			return th.AddrSpace(), true
		}
		return nil, false
	}
	return d, th, m
}

func TestSysCreateAndOpen(t *testing.T) {
	d, th, m := newTestDispatcher(t, &bytes.Buffer{})
	as := th.AddrSpace()
	const nameAddr = 0
	d.writeStrToUsr(as, nameAddr, "out.txt")

	regs := m.Registers()
	regs.Result = Create
	regs.Args[0] = nameAddr
	m.SetRegisters(regs)
	require.False(t, d.HandleSyscall(th))
	require.Equal(t, 0, m.Registers().Result)

	regs = m.Registers()
	regs.Result = Open
	regs.Args[0] = nameAddr
	m.SetRegisters(regs)
	require.False(t, d.HandleSyscall(th))
	fd := m.Registers().Result
	require.GreaterOrEqual(t, fd, 2)
}

func TestSysOpenMissingFileFails(t *testing.T) {
	d, th, m := newTestDispatcher(t, &bytes.Buffer{})
	as := th.AddrSpace()
	const nameAddr = 0
	d.writeStrToUsr(as, nameAddr, "missing.txt")

	regs := m.Registers()
	regs.Result = Open
	regs.Args[0] = nameAddr
	m.SetRegisters(regs)
	d.HandleSyscall(th)
	require.Equal(t, -1, m.Registers().Result)
}

func TestSysWriteToConsole(t *testing.T) {
	var out bytes.Buffer
	d, th, m := newTestDispatcher(t, &out)
	as := th.AddrSpace()
	const msgAddr = 200
	msg := []byte("hi")
	d.writeBuffToUsr(as, msgAddr, msg)

	regs := m.Registers()
	regs.Result = Write
	regs.Args[0] = ConsoleOutput
	regs.Args[1] = msgAddr
	regs.Args[2] = len(msg)
	m.SetRegisters(regs)
	require.False(t, d.HandleSyscall(th))
	require.Equal(t, "hi", out.String())
}

func TestSysCreateWriteReadRoundTrip(t *testing.T) {
	d, th, m := newTestDispatcher(t, &bytes.Buffer{})
	as := th.AddrSpace()
	const nameAddr = 0
	d.writeStrToUsr(as, nameAddr, "data.txt")

	regs := m.Registers()
	regs.Result = Create
	regs.Args[0] = nameAddr
	m.SetRegisters(regs)
	d.HandleSyscall(th)

	regs = m.Registers()
	regs.Result = Open
	regs.Args[0] = nameAddr
	m.SetRegisters(regs)
	d.HandleSyscall(th)
	fd := m.Registers().Result

	const bufAddr = 300
	payload := []byte("payload")
	d.writeBuffToUsr(as, bufAddr, payload)

	regs = m.Registers()
	regs.Result = Write
	regs.Args[0] = fd
	regs.Args[1] = bufAddr
	regs.Args[2] = len(payload)
	m.SetRegisters(regs)
	d.HandleSyscall(th)

	regs = m.Registers()
	regs.Result = Close
	regs.Args[0] = fd
	m.SetRegisters(regs)
	d.HandleSyscall(th)

	regs = m.Registers()
	regs.Result = Open
	regs.Args[0] = nameAddr
	m.SetRegisters(regs)
	d.HandleSyscall(th)
	fd2 := m.Registers().Result

	const readAddr = 400
	regs = m.Registers()
	regs.Result = Read
	regs.Args[0] = fd2
	regs.Args[1] = readAddr
	regs.Args[2] = len(payload)
	m.SetRegisters(regs)
	d.HandleSyscall(th)
	require.Equal(t, len(payload), m.Registers().Result)
	require.Equal(t, payload, d.readBuffFromUsr(as, readAddr, len(payload)))
}

func TestSysExitSetsStatusAndWakesJoiners(t *testing.T) {
	d, parent, m := newTestDispatcher(t, &bytes.Buffer{})
	_ = parent

	code := make([]byte, int(mem.PageSize))
	d.FS.Create("child", 0)
	f, _ := d.FS.Open("child")
	f.WriteAt(buildExecutable(code), 0)

	child, pid, kerr := PrepareProcess(d.VM, d.Procs, d.Args, d.FS, "child", nil, 5, 0)
	require.Nil(t, kerr)

	done := make(chan struct{})
	go func() {
		childRegs := machine.Registers{Result: Exit, Args: [4]int{7}}
		savedRegs := m.Registers()
		m.SetRegisters(childRegs)
		d.HandleSyscall(child)
		m.SetRegisters(savedRegs)
		close(done)
	}()
	<-done

	regs := m.Registers()
	regs.Result = Join
	regs.Args[0] = pid
	m.SetRegisters(regs)
	require.False(t, d.HandleSyscall(parent))
	require.Equal(t, 7, m.Registers().Result)

	_, stillThere := d.Procs.GetProcess(pid)
	require.False(t, stillThere, "Join should free the pid once the status has been collected")
}

func TestSysJoinOnUnknownPidFails(t *testing.T) {
	d, th, m := newTestDispatcher(t, &bytes.Buffer{})
	regs := m.Registers()
	regs.Result = Join
	regs.Args[0] = 99
	m.SetRegisters(regs)
	d.HandleSyscall(th)
	require.Equal(t, -1, m.Registers().Result)
}

func TestSysExecTokenizesAndRecordsArgs(t *testing.T) {
	d, parent, m := newTestDispatcher(t, &bytes.Buffer{})
	as := parent.AddrSpace()

	code := make([]byte, int(mem.PageSize))
	d.FS.Create("child", 0)
	cf, _ := d.FS.Open("child")
	cf.WriteAt(buildExecutable(code), 0)

	const cmdAddr = 500
	d.writeStrToUsr(as, cmdAddr, "child  one   two")

	regs := m.Registers()
	regs.Result = Exec
	regs.Args[0] = cmdAddr
	m.SetRegisters(regs)
	require.False(t, d.HandleSyscall(parent))
	childPid := m.Registers().Result
	require.GreaterOrEqual(t, childPid, 0)

	child, ok := d.Procs.GetProcess(childPid)
	require.True(t, ok)
	require.Equal(t, 3, d.sysGetNArgs(child))

	const argAddr = 600
	regs = m.Registers()
	regs.Result = GetArgN
	regs.Args[0] = 1
	regs.Args[1] = argAddr
	m.SetRegisters(regs)
	require.False(t, d.HandleSyscall(child))
	require.Equal(t, 0, m.Registers().Result)
	require.Equal(t, "one", d.readStrFromUsr(child.AddrSpace(), argAddr))
}

func TestSysExecOnEmptyCommandLineFails(t *testing.T) {
	d, parent, m := newTestDispatcher(t, &bytes.Buffer{})
	as := parent.AddrSpace()
	const cmdAddr = 700
	d.writeStrToUsr(as, cmdAddr, "   ")

	regs := m.Registers()
	regs.Result = Exec
	regs.Args[0] = cmdAddr
	m.SetRegisters(regs)
	d.HandleSyscall(parent)
	require.Equal(t, -1, m.Registers().Result)
}

func TestUnknownSyscallPanics(t *testing.T) {
	d, th, m := newTestDispatcher(t, &bytes.Buffer{})
	regs := m.Registers()
	regs.Result = 999
	m.SetRegisters(regs)

	require.Panics(t, func() { d.HandleSyscall(th) })
}

func TestHandlePageFaultResolvesAndRetains(t *testing.T) {
	fs := machine.NewFakeFS()
	code := bytes.Repeat([]byte{0x33}, int(mem.PageSize)*2)
	fs.WriteFile("demand", buildExecutable(code))
	alloc := pmm.NewAllocator(64)
	vm := vmm.NewManager(alloc, fs, true, false)
	procs := proc.NewTable()
	args := proc.NewArgStore()

	th, _, kerr := PrepareProcess(vm, procs, args, fs, "demand", nil, 5, 4)
	require.Nil(t, kerr)

	d := &Dispatcher{Machine: machine.NewFake(64 * int(mem.PageSize)), FS: fs, Procs: procs, Args: args, VM: vm}
	halted := d.HandleException(th, PageFaultException, int(mem.PageSize))
	require.False(t, halted)

	pte, kerr := th.AddrSpace().GetPage(1)
	require.Nil(t, kerr)
	require.True(t, pte.Valid)
}

func TestFatalExceptionPanics(t *testing.T) {
	d, th, _ := newTestDispatcher(t, &bytes.Buffer{})
	require.Panics(t, func() { d.HandleException(th, ReadOnlyException, 0) })
}
