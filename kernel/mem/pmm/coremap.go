package pmm

import "sync"

// Owner identifies the process and virtual page number a frame has been
// loaded on behalf of.
type Owner struct {
	PID int
	VPN int
}

// CoreMap reverse-maps an allocated frame to the (pid, vpn) pair currently
// occupying it. It deliberately stores a (pid, vpn) pair rather than a
// pointer back to an address space: an address space already points forward
// to its page table entries, and a frame pointing back at the address space
// that owns it would make the two structures circularly reference each
// other. Eviction instead asks a process table for the *AddrSpace matching
// the pid it reads out of the core map.
type CoreMap struct {
	mu     sync.Mutex
	owners map[Frame]Owner
}

// NewCoreMap returns an empty core map.
func NewCoreMap() *CoreMap {
	return &CoreMap{owners: make(map[Frame]Owner)}
}

// Set records that frame f now holds page vpn of process pid.
func (c *CoreMap) Set(f Frame, pid, vpn int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owners[f] = Owner{PID: pid, VPN: vpn}
}

// Clear removes any ownership record for f, typically right after the frame
// has been freed.
func (c *CoreMap) Clear(f Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.owners, f)
}

// Owner returns the (pid, vpn) pair occupying f, if any.
func (c *CoreMap) Owner(f Frame) (Owner, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.owners[f]
	return o, ok
}
