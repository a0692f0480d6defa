// Package machine declares the boundary between this kernel and the
// simulated CPU, disk and console it runs on top of. None of these are
// implemented here: an ISA simulator, a disk-backed file system and a
// terminal device are each their own project. What belongs here is the
// contract the kernel's syscall dispatcher, address-space manager and
// console driver code against, plus a small in-memory Fake implementation
// good enough to drive the kernel's own test suite.
package machine

// Registers is the user-mode register file a syscall or exception handler
// reads arguments from and writes results into.
type Registers struct {
	PC     int
	NextPC int
	Stack  int
	Result int
	Args   [4]int
}

// Machine is the simulated CPU this kernel dispatches syscalls and
// exceptions for.
type Machine interface {
	// Registers returns a copy of the current user-mode register file.
	Registers() Registers

	// SetRegisters installs regs as the user-mode register file.
	SetRegisters(regs Registers)

	// Memory returns the byte-addressable physical RAM backing every
	// AddrSpace's page table entries. Its length is numFrames * page
	// size; slicing it at a frame's Address() and taking one page's
	// worth of bytes yields that frame's contents.
	Memory() []byte
}

// File is an open file handle, as returned by FileSystem.Open or Create. Its
// shape mirrors what an executable loader and a swap file both need:
// positioned reads and writes, nothing more.
type File interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Close() error
}

// FileSystem is the disk-backed file system user programs and the
// swap subsystem create, open and remove files through.
type FileSystem interface {
	Create(name string, size int64) error
	Open(name string) (File, error)
	Remove(name string) error
}

// ConsoleDevice is the character-at-a-time terminal backing the console
// syscalls. GetChar blocks until a byte is available; PutChar blocks until
// b has been emitted.
type ConsoleDevice interface {
	GetChar() byte
	PutChar(b byte)
}
