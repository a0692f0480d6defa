package proc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nachos/kernel/thread"
)

func TestTableAddGetRemove(t *testing.T) {
	tbl := NewTable()
	th := thread.New("p", 5)

	pid, ok := tbl.AddProcess(th)
	require.True(t, ok)
	require.Equal(t, 0, pid)

	got, ok := tbl.GetProcess(pid)
	require.True(t, ok)
	require.Same(t, th, got)

	gotPID, ok := tbl.GetPID(th)
	require.True(t, ok)
	require.Equal(t, pid, gotPID)

	tbl.RemoveProcess(pid)
	_, ok = tbl.GetProcess(pid)
	require.False(t, ok)
}

func TestTableReusesFreedPIDs(t *testing.T) {
	tbl := NewTable()
	a := thread.New("a", 5)
	b := thread.New("b", 5)

	pidA, _ := tbl.AddProcess(a)
	tbl.RemoveProcess(pidA)

	pidB, ok := tbl.AddProcess(b)
	require.True(t, ok)
	require.Equal(t, pidA, pidB, "a freed pid should be reused by the next AddProcess")
}

func TestTableFullRejectsNewProcesses(t *testing.T) {
	tbl := NewTable()
	for i := 0; i < MaxProcesses; i++ {
		_, ok := tbl.AddProcess(thread.New("p", 5))
		require.True(t, ok)
	}
	_, ok := tbl.AddProcess(thread.New("overflow", 5))
	require.False(t, ok)
}

func TestArgStoreSetGetClear(t *testing.T) {
	s := NewArgStore()
	require.Nil(t, s.Args(3))

	s.SetArgs(3, []string{"a", "b"})
	require.Equal(t, []string{"a", "b"}, s.Args(3))

	s.Clear(3)
	require.Nil(t, s.Args(3))
}
