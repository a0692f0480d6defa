package thread

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nachos/kernel/machine"
)

func TestThreadForkRunsBody(t *testing.T) {
	th := New("worker", 5)
	ran := make(chan struct{})
	th.Fork(func() {
		close(ran)
		th.Exit()
	})

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("forked body never ran")
	}
}

func TestThreadJoinWaitsForExit(t *testing.T) {
	th := New("worker", 5)
	proceed := make(chan struct{})
	th.Fork(func() {
		<-proceed
		th.SetExitStatus(42)
		th.Exit()
	})

	joined := make(chan struct{})
	go func() {
		th.Join()
		close(joined)
	}()

	select {
	case <-joined:
		t.Fatal("Join returned before Exit was called")
	case <-time.After(20 * time.Millisecond):
	}

	close(proceed)
	select {
	case <-joined:
	case <-time.After(time.Second):
		t.Fatal("Join never returned after Exit")
	}
	require.Equal(t, 42, th.ExitStatus())
}

func TestThreadMultipleJoinersAllWake(t *testing.T) {
	th := New("worker", 5)
	th.Fork(func() { th.Exit() })

	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			th.Join()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("joiner %d never woke", i)
		}
	}
}

type fakeFile struct{ closed bool }

func (f *fakeFile) ReadAt(p []byte, off int64) (int, error)  { return 0, nil }
func (f *fakeFile) WriteAt(p []byte, off int64) (int, error) { return len(p), nil }
func (f *fakeFile) Close() error                             { f.closed = true; return nil }

var _ machine.File = (*fakeFile)(nil)

func TestThreadFileDescriptorsStartAtTwo(t *testing.T) {
	th := New("worker", 5)
	fd := th.AddFile(&fakeFile{})
	require.Equal(t, 2, fd)

	fd2 := th.AddFile(&fakeFile{})
	require.Equal(t, 3, fd2)

	got, ok := th.GetFile(fd)
	require.True(t, ok)
	require.NotNil(t, got)
}

func TestThreadRemoveFileClosesIt(t *testing.T) {
	th := New("worker", 5)
	f := &fakeFile{}
	fd := th.AddFile(f)

	th.RemoveFile(fd)
	require.True(t, f.closed)

	_, ok := th.GetFile(fd)
	require.False(t, ok)
}

func TestThreadExitClosesOpenFilesAndIsIdempotent(t *testing.T) {
	th := New("worker", 5)
	f := &fakeFile{}
	th.AddFile(f)

	th.Exit()
	require.True(t, f.closed)

	// A second Exit must not panic or double-close.
	th.Exit()
}
