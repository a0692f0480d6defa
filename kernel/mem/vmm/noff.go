package vmm

import (
	"bytes"
	"encoding/binary"

	"nachos/kernel"
)

var errNoffModule = "vmm.noff"

// noffMagic identifies a well-formed object file header.
const noffMagic = 0xbadfad

// noffSegment describes one segment of an object file: how many bytes it
// occupies, the virtual address it is linked to run at, and the byte offset
// within the object file where its contents start.
type noffSegment struct {
	Size        int32
	VirtualAddr int32
	InFileAddr  int32
}

// noffHeader is the fixed-size header at the start of every object file:
// a magic number followed by code, initialized-data and uninitialized-data
// segment descriptors.
type noffHeader struct {
	Magic      int32
	Code       noffSegment
	InitData   noffSegment
	UninitData noffSegment
}

// parseNoffHeader decodes the fixed 40-byte header at the start of an object
// file. Object files produced on a big-endian host have all of their 32-bit
// fields byte-swapped relative to this (little-endian) kernel, so if the
// magic number doesn't match as-is, parseNoffHeader retries after swapping
// every field and only fails if neither interpretation is valid.
func parseNoffHeader(raw []byte) (noffHeader, *kernel.Error) {
	var h noffHeader
	if len(raw) < 40 {
		return h, &kernel.Error{Module: errNoffModule, Message: "object file shorter than its header"}
	}
	if err := binary.Read(bytes.NewReader(raw[:40]), binary.LittleEndian, &h); err != nil {
		return h, &kernel.Error{Module: errNoffModule, Message: err.Error()}
	}
	if h.Magic == noffMagic {
		return h, nil
	}

	swapped := swapHeader(h)
	if swapped.Magic == noffMagic {
		return swapped, nil
	}
	return h, &kernel.Error{Module: errNoffModule, Message: "object file has no valid NOFF magic number"}
}

func swap32(v int32) int32 {
	u := uint32(v)
	return int32(u>>24 | (u>>8)&0xff00 | (u<<8)&0xff0000 | u<<24)
}

func swapHeader(h noffHeader) noffHeader {
	return noffHeader{
		Magic: swap32(h.Magic),
		Code: noffSegment{
			Size:        swap32(h.Code.Size),
			VirtualAddr: swap32(h.Code.VirtualAddr),
			InFileAddr:  swap32(h.Code.InFileAddr),
		},
		InitData: noffSegment{
			Size:        swap32(h.InitData.Size),
			VirtualAddr: swap32(h.InitData.VirtualAddr),
			InFileAddr:  swap32(h.InitData.InFileAddr),
		},
		UninitData: noffSegment{
			Size:        swap32(h.UninitData.Size),
			VirtualAddr: swap32(h.UninitData.VirtualAddr),
			InFileAddr:  swap32(h.UninitData.InFileAddr),
		},
	}
}
