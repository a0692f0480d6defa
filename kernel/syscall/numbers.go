package syscall

// Syscall numbers, written into Registers.Result before a user program
// traps into the kernel.
const (
	Halt     = 0
	Exit     = 1
	Exec     = 2
	Join     = 3
	Create   = 4
	Open     = 5
	Read     = 6
	Write    = 7
	Close    = 8
	GetArgN  = 9
	GetNArgs = 10
)

// File descriptors for the console, reserved below firstUserFD.
const (
	ConsoleInput  = 0
	ConsoleOutput = 1
)
