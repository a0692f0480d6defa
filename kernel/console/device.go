// Package console implements the character-at-a-time terminal the console
// syscalls read and write through.
package console

import (
	"bufio"
	"io"
)

// Device is a machine.ConsoleDevice backed by a pair of byte streams --
// os.Stdin/os.Stdout in production, anything io.Reader/io.Writer in tests.
type Device struct {
	in  *bufio.Reader
	out io.Writer
}

// NewDevice returns a Device reading from in and writing to out.
func NewDevice(in io.Reader, out io.Writer) *Device {
	return &Device{in: bufio.NewReader(in), out: out}
}

// GetChar reads and returns the next byte from the input stream, returning
// 0 at end-of-input.
func (d *Device) GetChar() byte {
	b, err := d.in.ReadByte()
	if err != nil {
		return 0
	}
	return b
}

// PutChar writes b to the output stream.
func (d *Device) PutChar(b byte) {
	d.out.Write([]byte{b})
}
