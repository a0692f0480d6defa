// Package fsmem implements an in-memory machine.FileSystem: every "file" is
// just a []byte kept in a map. A real kernel's file system would format
// disk sectors and manage a directory structure on persistent storage; that
// is out of scope here, and the syscall dispatcher, the loader and the
// swap subsystem only ever need ReadAt/WriteAt/Create/Open/Remove, so a map
// of byte slices satisfies the whole contract they depend on.
package fsmem

import (
	"errors"
	"sync"

	"nachos/kernel/machine"
)

// ErrExists is returned by Create when name is already present.
var ErrExists = errors.New("fsmem: file already exists")

// FS is an in-memory machine.FileSystem.
type FS struct {
	mu    sync.Mutex
	files map[string][]byte
}

// New returns an empty file system.
func New() *FS {
	return &FS{files: make(map[string][]byte)}
}

// Create adds a zero-filled file of the given size under name.
func (fs *FS) Create(name string, size int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, exists := fs.files[name]; exists {
		return ErrExists
	}
	fs.files[name] = make([]byte, size)
	return nil
}

// Open returns a handle to the file registered under name.
func (fs *FS) Open(name string) (machine.File, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, exists := fs.files[name]; !exists {
		return nil, machine.ErrNotExist
	}
	return &file{fs: fs, name: name}, nil
}

// Remove deletes name. It is a no-op if name doesn't exist.
func (fs *FS) Remove(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.files, name)
	return nil
}

// WriteFile seeds name with contents directly, for loading an executable
// into the file system before Exec opens it.
func (fs *FS) WriteFile(name string, contents []byte) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	buf := make([]byte, len(contents))
	copy(buf, contents)
	fs.files[name] = buf
}

// file is a machine.File backed by one entry of fs.files.
type file struct {
	fs   *FS
	name string
}

func (f *file) ReadAt(p []byte, off int64) (int, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	data := f.fs.files[f.name]
	if off >= int64(len(data)) {
		return 0, nil
	}
	n := copy(p, data[off:])
	return n, nil
}

func (f *file) WriteAt(p []byte, off int64) (int, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	data := f.fs.files[f.name]
	end := off + int64(len(p))
	if end > int64(len(data)) {
		grown := make([]byte, end)
		copy(grown, data)
		data = grown
	}
	n := copy(data[off:end], p)
	f.fs.files[f.name] = data
	return n, nil
}

func (f *file) Close() error { return nil }
