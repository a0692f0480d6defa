package fsmem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateOpenReadWrite(t *testing.T) {
	fs := New()
	require.NoError(t, fs.Create("a.txt", 0))

	f, err := fs.Open("a.txt")
	require.NoError(t, err)

	n, err := f.WriteAt([]byte("hello"), 0)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	buf := make([]byte, 5)
	n, err = f.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf))
}

func TestCreateDuplicateFails(t *testing.T) {
	fs := New()
	require.NoError(t, fs.Create("a.txt", 0))
	require.Error(t, fs.Create("a.txt", 0))
}

func TestOpenMissingFails(t *testing.T) {
	fs := New()
	_, err := fs.Open("missing")
	require.Error(t, err)
}

func TestRemove(t *testing.T) {
	fs := New()
	fs.WriteFile("a.txt", []byte("data"))
	require.NoError(t, fs.Remove("a.txt"))
	_, err := fs.Open("a.txt")
	require.Error(t, err)
}

func TestWriteAtPastEndGrowsFile(t *testing.T) {
	fs := New()
	fs.Create("a.txt", 2)
	f, _ := fs.Open("a.txt")
	f.WriteAt([]byte("xyz"), 5)

	buf := make([]byte, 8)
	n, _ := f.ReadAt(buf, 0)
	require.Equal(t, 8, n)
	require.Equal(t, "xyz", string(buf[5:8]))
}
