package pmm

import (
	"sync"

	"nachos/kernel"
)

var errAllocModule = "pmm"

// Allocator is a bitmap-backed allocator over a fixed number of physical
// frames. Unlike a boot-time allocator that can only ever hand out frames
// and never take them back, this one supports FreeFrame: user address
// spaces are created and torn down constantly, and every torn-down address
// space must return its frames to the pool.
type Allocator struct {
	mu        sync.Mutex
	bitmap    []uint64 // one bit per frame; set means allocated
	numFrames int
	free      int
}

// NewAllocator returns an allocator managing numFrames frames, all initially
// free.
func NewAllocator(numFrames int) *Allocator {
	words := (numFrames + 63) / 64
	return &Allocator{
		bitmap:    make([]uint64, words),
		numFrames: numFrames,
		free:      numFrames,
	}
}

// NumFrames returns the total frame count this allocator manages.
func (a *Allocator) NumFrames() int { return a.numFrames }

// FreeCount returns the number of currently unallocated frames.
func (a *Allocator) FreeCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.free
}

func (a *Allocator) test(i int) bool {
	return a.bitmap[i/64]&(1<<uint(i%64)) != 0
}

func (a *Allocator) set(i int) {
	a.bitmap[i/64] |= 1 << uint(i%64)
}

func (a *Allocator) clear(i int) {
	a.bitmap[i/64] &^= 1 << uint(i%64)
}

// AllocFrame reserves and returns the lowest-numbered free frame. It returns
// InvalidFrame and false if the pool is exhausted.
func (a *Allocator) AllocFrame() (Frame, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.free == 0 {
		return InvalidFrame, false
	}
	for i := 0; i < a.numFrames; i++ {
		if !a.test(i) {
			a.set(i)
			a.free--
			return Frame(i), true
		}
	}
	// free > 0 but no bit was clear: the bookkeeping is corrupt.
	kernel.Assert(false, errAllocModule, "free count %d inconsistent with bitmap", a.free)
	return InvalidFrame, false
}

// FreeFrame returns f to the pool. It asserts that f was actually allocated,
// since freeing an already-free frame almost always means a double-free bug
// upstream.
func (a *Allocator) FreeFrame(f Frame) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := int(f)
	kernel.Assert(i >= 0 && i < a.numFrames, errAllocModule, "frame %d out of range [0,%d)", i, a.numFrames)
	kernel.Assert(a.test(i), errAllocModule, "frame %d freed while already free", i)
	a.clear(i)
	a.free++
}
