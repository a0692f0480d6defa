package console

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"nachos/kernel/sched"
)

type fakeRunnable struct{ name string }

func (f *fakeRunnable) Name() string        { return f.name }
func (f *fakeRunnable) Priority() int        { return 5 }
func (f *fakeRunnable) SetPriority(int)      {}
func (f *fakeRunnable) InitialPriority() int { return 5 }

func TestDeviceGetCharPutChar(t *testing.T) {
	in := strings.NewReader("hi")
	var out bytes.Buffer
	dev := NewDevice(in, &out)

	require.Equal(t, byte('h'), dev.GetChar())
	require.Equal(t, byte('i'), dev.GetChar())
	require.Equal(t, byte(0), dev.GetChar(), "GetChar past EOF returns 0")

	dev.PutChar('x')
	require.Equal(t, "x", out.String())
}

func TestSynchSerializesConcurrentWriters(t *testing.T) {
	var out bytes.Buffer
	dev := NewDevice(strings.NewReader(""), &out)
	q := sched.New()
	s := NewSynch(dev, q)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			s.PutChar(&fakeRunnable{name: "w"}, 'a')
		}()
	}
	wg.Wait()
	require.Equal(t, n, out.Len())
}
