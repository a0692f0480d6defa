// Package pmm manages the machine's physical frame pool: a fixed-size
// bitmap allocator, a core map that reverse-maps an allocated frame back to
// the (pid, virtual page) pair occupying it, and the FIFO list eviction
// picks from when the pool runs dry.
package pmm

import (
	"math"

	"nachos/kernel/mem"
)

// Frame identifies a physical memory page by index, not byte address.
type Frame uintptr

// InvalidFrame is returned by allocators that fail to reserve a frame.
const InvalidFrame = Frame(math.MaxUint64)

// Valid reports whether f is a real, allocated frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the byte offset of f within physical memory.
func (f Frame) Address() int {
	return int(f) << mem.PageShift
}
