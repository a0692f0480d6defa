package sync

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// swapYieldFn substitutes yieldFn with runtime.Gosched for the duration of a
// test so a contended Acquire busy-waits by yielding the goroutine instead of
// spinning the host CPU, and restores whatever was installed before.
func swapYieldFn(t *testing.T) {
	orig := yieldFn
	yieldFn = runtime.Gosched
	t.Cleanup(func() { yieldFn = orig })
}

func TestSpinlockTryToAcquireFailsWhileHeld(t *testing.T) {
	swapYieldFn(t)

	var sl Spinlock
	sl.Acquire()
	require.False(t, sl.TryToAcquire(), "TryToAcquire must fail while the lock is held")

	sl.Release()
	require.True(t, sl.TryToAcquire(), "TryToAcquire must succeed once the lock is free")
}

// TestSpinlockSerializesContendedCounter hammers a shared counter from many
// goroutines under one Spinlock; if Acquire/Release ever let two goroutines
// in at once, the final count comes out short.
func TestSpinlockSerializesContendedCounter(t *testing.T) {
	swapYieldFn(t)

	const (
		numWorkers    = 10
		incrPerWorker = 200
	)

	var (
		sl      Spinlock
		counter int
		wg      sync.WaitGroup
	)

	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < incrPerWorker; j++ {
				sl.Acquire()
				counter++
				sl.Release()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, numWorkers*incrPerWorker, counter)
}
