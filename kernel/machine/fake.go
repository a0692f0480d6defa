package machine

import (
	"bytes"
	"io"
	"sync"

	"nachos/kernel"
)

// Fake is an in-memory Machine used by tests that need something to read
// and write physical memory and a register file without a real simulator.
type Fake struct {
	mu   sync.Mutex
	regs Registers
	mem  []byte
}

// NewFake returns a Fake with memSize bytes of zeroed physical memory.
func NewFake(memSize int) *Fake {
	return &Fake{mem: make([]byte, memSize)}
}

func (f *Fake) Registers() Registers {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regs
}

func (f *Fake) SetRegisters(regs Registers) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs = regs
}

func (f *Fake) Memory() []byte {
	return f.mem
}

// FakeFile is an in-memory File backed by a byte buffer, used by FakeFS.
type FakeFile struct {
	mu   sync.Mutex
	data []byte
}

func (f *FakeFile) ReadAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := kernel.Memcopy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *FakeFile) WriteAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	end := off + int64(len(p))
	if end > int64(len(f.data)) {
		grown := make([]byte, end)
		kernel.Memcopy(grown, f.data)
		f.data = grown
	}
	return kernel.Memcopy(f.data[off:end], p), nil
}

func (f *FakeFile) Close() error { return nil }

// Bytes returns a copy of the file's current contents, for assertions.
func (f *FakeFile) Bytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return bytes.Clone(f.data)
}

// FakeFS is an in-memory FileSystem keyed by file name.
type FakeFS struct {
	mu    sync.Mutex
	files map[string]*FakeFile
}

// NewFakeFS returns an empty file system.
func NewFakeFS() *FakeFS {
	return &FakeFS{files: make(map[string]*FakeFile)}
}

func (fs *FakeFS) Create(name string, size int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[name] = &FakeFile{data: make([]byte, size)}
	return nil
}

func (fs *FakeFS) Open(name string) (File, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, ok := fs.files[name]
	if !ok {
		return nil, ErrNotExist
	}
	return f, nil
}

func (fs *FakeFS) Remove(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.files, name)
	return nil
}

// WriteFile seeds name with contents, for test setup (loading an
// executable's bytes before an AddrSpace opens it).
func (fs *FakeFS) WriteFile(name string, contents []byte) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[name] = &FakeFile{data: bytes.Clone(contents)}
}
