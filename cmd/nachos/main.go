// Command nachos boots one kernel instance against an in-memory machine,
// fake file system and console, and runs it through a short smoke
// demonstration: spawning and joining a process, writing to the console,
// and loading an address space under enough memory pressure to force a
// page eviction and swap round-trip.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"

	"nachos/kernel"
	"nachos/kernel/console"
	"nachos/kernel/fsmem"
	"nachos/kernel/kctx"
	"nachos/kernel/klog"
	"nachos/kernel/machine"
	"nachos/kernel/mem"
	"nachos/kernel/mem/pmm"
	"nachos/kernel/mem/vmm"
	"nachos/kernel/shell"
	"nachos/kernel/syscall"
	"nachos/kernel/thread"
)

func main() {
	numFrames := flag.Int("frames", 64, "number of physical page frames")
	demandPaging := flag.Bool("demand-paging", true, "enable demand paging instead of eager executable loading")
	swap := flag.Bool("swap", true, "enable swapping pages to disk under frame pressure")
	tlbSize := flag.Int("tlb", 4, "software TLB entries per address space (0 disables the TLB)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	level, lerr := logrus.ParseLevel(*logLevel)
	if lerr != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", *logLevel, lerr)
		os.Exit(1)
	}
	klog.SetOutput(os.Stderr)
	klog.SetLevel(level)
	log := klog.For("cmd/nachos")

	kernel.SetReportFunc(func(e *kernel.Error) {
		log.WithField("module", e.Module).Error(e.Message)
	})
	kernel.SetHaltFunc(func() {})
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*kernel.Error); ok {
				os.Exit(1)
			}
			panic(r)
		}
	}()

	m := machine.NewFake(*numFrames * int(mem.PageSize))
	fs := fsmem.New()
	dev := console.NewDevice(os.Stdin, os.Stdout)
	ctx := kctx.New(kctx.Config{
		NumFrames:    *numFrames,
		DemandPaging: *demandPaging,
		SwapEnabled:  *swap,
		TLBSize:      *tlbSize,
	}, m, fs, dev)
	ctx.Dispatch.HaltFn = func() { os.Exit(0) }

	runGreeterDemo(ctx, log)
	runDemandPagingDemo(log)
}

// noffSeg/noffHdr mirror the private layout kernel/mem/vmm.parseNoffHeader
// expects; cmd/nachos has no real linker to produce object files with, so
// it builds trivial ones in memory the same way every package's tests do.
type noffSeg struct{ Size, VirtualAddr, InFileAddr int32 }
type noffHdr struct {
	Magic                      int32
	Code, InitData, UninitData noffSeg
}

func buildExecutable(code []byte) []byte {
	h := noffHdr{Magic: 0xbadfad, Code: noffSeg{Size: int32(len(code)), InFileAddr: 40}}
	buf := make([]byte, 0, 40+len(code))
	put := func(v int32) {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	put(h.Magic)
	put(h.Code.Size)
	put(h.Code.VirtualAddr)
	put(h.Code.InFileAddr)
	put(h.InitData.Size)
	put(h.InitData.VirtualAddr)
	put(h.InitData.InFileAddr)
	put(h.UninitData.Size)
	put(h.UninitData.VirtualAddr)
	put(h.UninitData.InFileAddr)
	buf = append(buf, code...)
	return buf
}

// runGreeterDemo spawns a process through the shell (S1/S4 style dispatch:
// a foreground command blocks until its process exits), driving that
// process's Write and Exit syscalls itself since there is no instruction-set
// simulator to run real compiled user code against.
func runGreeterDemo(ctx *kctx.Context, log logrus.FieldLogger) {
	code := make([]byte, int(mem.PageSize))
	if err := ctx.FS.Create("greeter", 0); err != nil {
		log.WithField("err", err).Fatal("failed to create greeter executable")
	}
	f, err := ctx.FS.Open("greeter")
	if err != nil {
		log.WithField("err", err).Fatal("failed to open greeter executable")
	}
	f.WriteAt(buildExecutable(code), 0)

	go driveGreeterProcess(ctx, log)

	status, kerr := shell.Run(ctx, "greeter hello\n", 5)
	if kerr != nil {
		log.WithField("err", kerr).Fatal("greeter failed to run")
	}
	log.WithField("status", status).Info("greeter exited")
}

// driveGreeterProcess waits for the greeter process to be registered, then
// plays out the syscalls its compiled body would have made: print a message
// to the console and exit 0.
func driveGreeterProcess(ctx *kctx.Context, log logrus.FieldLogger) {
	var th *thread.Thread
	for th == nil {
		for pid := 0; pid < 128; pid++ {
			if cand, ok := ctx.Procs.GetProcess(pid); ok && cand.Name() == "greeter" {
				th = cand
				break
			}
		}
		if th == nil {
			runtime.Gosched()
		}
	}

	as := th.AddrSpace()
	const msgAddr = 64
	msg := []byte("hello from nachos\n")
	for i, b := range msg {
		phys, terr := as.Translate(msgAddr + i)
		if terr != nil {
			log.WithField("err", terr).Fatal("failed to translate console message address")
		}
		ctx.Machine.Memory()[phys] = b
	}

	regs := ctx.Machine.Registers()
	regs.Result = syscall.Write
	regs.Args[0] = syscall.ConsoleOutput
	regs.Args[1] = msgAddr
	regs.Args[2] = len(msg)
	ctx.Machine.SetRegisters(regs)
	ctx.Dispatch.HandleSyscall(th)

	regs = ctx.Machine.Registers()
	regs.Result = syscall.Exit
	regs.Args[0] = 0
	ctx.Machine.SetRegisters(regs)
	ctx.Dispatch.HandleSyscall(th)
}

// runDemandPagingDemo builds an address space with 16 pages of code (plus
// the user stack) over a 4-frame pool and touches each code page in order,
// then re-touches page 0 -- enough memory
// pressure to force repeated eviction and swap-in, exercising the same
// path TestMakeRoomEvictsAndFreesAFrame checks in kernel/mem/vmm.
func runDemandPagingDemo(log logrus.FieldLogger) {
	const numFrames = 4
	const numDataPages = 16

	fs := fsmem.New()
	code := make([]byte, numDataPages*int(mem.PageSize))
	for i := range code {
		code[i] = byte(i / int(mem.PageSize))
	}
	fs.Create("stress", 0)
	f, _ := fs.Open("stress")
	f.WriteAt(buildExecutable(code), 0)

	alloc := pmm.NewAllocator(numFrames)
	vm := vmm.NewManager(alloc, fs, true, true)

	exe, _ := fs.Open("stress")
	as, kerr := vmm.NewAddrSpace(vm, 1, exe, 0)
	if kerr != nil {
		log.WithField("err", kerr).Fatal("failed to build demand-paging demo address space")
	}
	vm.Resolve = func(pid int) (*vmm.AddrSpace, bool) {
		if pid == 1 {
			return as, true
		}
		return nil, false
	}

	for vpn := 0; vpn < numDataPages; vpn++ {
		if _, kerr := as.GetPage(vpn); kerr != nil {
			log.WithField("vpn", vpn).WithField("err", kerr).Fatal("page fault demo failed")
		}
	}
	pte, kerr := as.GetPage(0)
	if kerr != nil {
		log.WithField("err", kerr).Fatal("re-fault of page 0 failed")
	}
	page := vm.Memory[int(pte.PhysicalPage)*int(mem.PageSize) : (int(pte.PhysicalPage)+1)*int(mem.PageSize)]
	for i, b := range page {
		if b != 0 {
			log.WithField("offset", i).Fatal("page 0 contents did not survive eviction and swap-in")
		}
	}
	log.WithField("frames", numFrames).WithField("pages", numDataPages).Info("demand paging demo completed: eviction and swap-in round-tripped correctly")
}
