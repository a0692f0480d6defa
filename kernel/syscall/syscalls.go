package syscall

import (
	stdsync "sync"

	"io"

	"nachos/kernel/machine"
	"nachos/kernel/thread"
)

// seqFile wraps a machine.File with the sequential read/write position a
// user program expects from fd-based I/O: each Read or Write continues
// where the last one left off, rather than requiring the caller to track
// and supply an offset the way the underlying ReadAt/WriteAt contract does.
type seqFile struct {
	machine.File
	mu  stdsync.Mutex
	pos int64
}

func (f *seqFile) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.File.ReadAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

func (f *seqFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.File.WriteAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

func (d *Dispatcher) sysHalt() {
	log.Info("halt syscall received, stopping the machine")
	if d.HaltFn != nil {
		d.HaltFn()
	}
}

func (d *Dispatcher) sysCreate(th *thread.Thread, regs machine.Registers) int {
	name := d.readStrFromUsr(th.AddrSpace(), regs.Args[0])
	if err := d.FS.Create(name, 0); err != nil {
		return -1
	}
	return 0
}

func (d *Dispatcher) sysOpen(th *thread.Thread, regs machine.Registers) int {
	name := d.readStrFromUsr(th.AddrSpace(), regs.Args[0])
	f, err := d.FS.Open(name)
	if err != nil {
		return -1
	}
	return th.AddFile(&seqFile{File: f})
}

func (d *Dispatcher) sysClose(th *thread.Thread, regs machine.Registers) {
	th.RemoveFile(regs.Args[0])
}

func (d *Dispatcher) sysRead(th *thread.Thread, regs machine.Registers) int {
	fd, bufAddr, size := regs.Args[0], regs.Args[1], regs.Args[2]
	if size <= 0 {
		return 0
	}
	as := th.AddrSpace()

	if fd == ConsoleInput {
		buf := make([]byte, 0, size)
		for i := 0; i < size; i++ {
			b := d.Console.GetChar(th)
			if b == 0 {
				break
			}
			buf = append(buf, b)
		}
		d.writeBuffToUsr(as, bufAddr, buf)
		return len(buf)
	}

	f, ok := th.GetFile(fd)
	if !ok {
		return -1
	}
	sf, ok := f.(*seqFile)
	if !ok {
		return -1
	}
	n := size
	if n > maxUserBuffer {
		n = maxUserBuffer
	}
	buf := make([]byte, n)
	read, err := sf.Read(buf)
	if err != nil && err != io.EOF {
		return -1
	}
	d.writeBuffToUsr(as, bufAddr, buf[:read])
	return read
}

func (d *Dispatcher) sysWrite(th *thread.Thread, regs machine.Registers) {
	fd, bufAddr, size := regs.Args[0], regs.Args[1], regs.Args[2]
	if size <= 0 {
		return
	}
	as := th.AddrSpace()
	buf := d.readBuffFromUsr(as, bufAddr, size)

	if fd == ConsoleOutput {
		for _, b := range buf {
			d.Console.PutChar(th, b)
		}
		return
	}

	f, ok := th.GetFile(fd)
	if !ok {
		return
	}
	if sf, ok := f.(*seqFile); ok {
		sf.Write(buf)
	}
}

func (d *Dispatcher) sysExit(th *thread.Thread, regs machine.Registers) {
	status := regs.Args[0]
	th.SetExitStatus(status)
	th.Exit()
}

func (d *Dispatcher) sysJoin(regs machine.Registers) int {
	pid := regs.Args[0]
	th, ok := d.Procs.GetProcess(pid)
	if !ok {
		return -1
	}
	th.Join()
	status := th.ExitStatus()
	d.Procs.RemoveProcess(pid)
	d.Args.Clear(pid)
	return status
}

func (d *Dispatcher) sysExec(th *thread.Thread, regs machine.Registers) int {
	cmdline := d.readStrFromUsr(th.AddrSpace(), regs.Args[0])
	argv := tokenize(cmdline)
	if len(argv) == 0 {
		return -1
	}

	child, pid, err := PrepareProcess(d.VM, d.Procs, d.Args, d.FS, argv[0], argv, th.Priority(), d.TLBSize)
	if err != nil {
		log.WithField("cmd", cmdline).WithField("err", err).Error("exec failed")
		return -1
	}
	_ = child
	return pid
}

func (d *Dispatcher) sysGetNArgs(th *thread.Thread) int {
	pid, ok := d.Procs.GetPID(th)
	if !ok {
		return 0
	}
	return len(d.Args.Args(pid))
}

func (d *Dispatcher) sysGetArgN(th *thread.Thread, regs machine.Registers) int {
	n, addr := regs.Args[0], regs.Args[1]
	pid, ok := d.Procs.GetPID(th)
	if !ok {
		return -1
	}
	argv := d.Args.Args(pid)
	if n < 0 || n >= len(argv) {
		return -1
	}
	d.writeStrToUsr(th.AddrSpace(), addr, argv[n])
	return 0
}
