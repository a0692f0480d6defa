package pmm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocatorAllocFree(t *testing.T) {
	a := NewAllocator(4)
	require.Equal(t, 4, a.FreeCount())

	f0, ok := a.AllocFrame()
	require.True(t, ok)
	require.Equal(t, Frame(0), f0)
	require.Equal(t, 3, a.FreeCount())

	f1, ok := a.AllocFrame()
	require.True(t, ok)
	require.Equal(t, Frame(1), f1)

	a.FreeFrame(f0)
	require.Equal(t, 3, a.FreeCount())

	// The freed frame should be reused before a never-allocated one.
	f2, ok := a.AllocFrame()
	require.True(t, ok)
	require.Equal(t, Frame(0), f2)
}

func TestAllocatorExhaustion(t *testing.T) {
	a := NewAllocator(2)
	_, ok := a.AllocFrame()
	require.True(t, ok)
	_, ok = a.AllocFrame()
	require.True(t, ok)

	_, ok = a.AllocFrame()
	require.False(t, ok, "allocating past capacity must fail rather than panic")
}

func TestAllocatorDoubleFreeAsserts(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected FreeFrame to panic on a double free")
		}
	}()
	a := NewAllocator(1)
	f, _ := a.AllocFrame()
	a.FreeFrame(f)
	a.FreeFrame(f)
}

func TestCoreMapSetClear(t *testing.T) {
	c := NewCoreMap()
	c.Set(Frame(3), 7, 2)

	owner, ok := c.Owner(Frame(3))
	require.True(t, ok)
	require.Equal(t, Owner{PID: 7, VPN: 2}, owner)

	c.Clear(Frame(3))
	_, ok = c.Owner(Frame(3))
	require.False(t, ok)
}

func TestLoadedFIFOOrder(t *testing.T) {
	l := NewLoaded()
	l.Push(Frame(1))
	l.Push(Frame(2))
	l.Push(Frame(3))
	require.Equal(t, 3, l.Len())

	l.Remove(Frame(2))
	require.Equal(t, 2, l.Len())

	oldest, ok := l.Oldest()
	require.True(t, ok)
	require.Equal(t, Frame(1), oldest)

	oldest, ok = l.Oldest()
	require.True(t, ok)
	require.Equal(t, Frame(3), oldest)

	_, ok = l.Oldest()
	require.False(t, ok)
}
