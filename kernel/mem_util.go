package kernel

// Memset fills buf with value using a log2(len) doubling copy. Physical
// memory here is just a []byte owned by the machine.Machine implementation,
// so there's no raw address to overlay -- but the doubling copy still beats
// a byte-by-byte loop for the page-sized buffers this is called with.
func Memset(buf []byte, value byte) {
	if len(buf) == 0 {
		return
	}
	buf[0] = value
	for index := 1; index < len(buf); index *= 2 {
		copy(buf[index:], buf[:index])
	}
}

// Memcopy copies min(len(src), len(dst)) bytes from src to dst.
func Memcopy(dst, src []byte) int {
	return copy(dst, src)
}
