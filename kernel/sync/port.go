package sync

import "nachos/kernel/sched"

// Port is a single-slot rendezvous channel: Send blocks only while the slot
// still holds an unreceived message, then installs its message and returns
// without waiting for a receiver; Receive blocks until a sender has filled
// the slot. It's built from a lock plus
// senderReady/receiverReady conditions guarding one integer slot.
type Port struct {
	lock          *Lock
	senderReady   *Condition
	receiverReady *Condition

	slot      int
	slotEmpty bool
}

// NewPort returns an empty port.
func NewPort(q *sched.Queue) *Port {
	return &Port{
		lock:          NewLock("port", q),
		senderReady:   NewCondition(),
		receiverReady: NewCondition(),
		slotEmpty:     true,
	}
}

// Send blocks until the slot is empty, installs msg, and wakes a waiting
// receiver.
func (p *Port) Send(caller sched.Runnable, msg int) {
	p.lock.Acquire(caller)
	for !p.slotEmpty {
		p.senderReady.Wait(p.lock, caller)
	}
	p.slot = msg
	p.slotEmpty = false
	p.receiverReady.Signal()
	p.lock.Release(caller)
}

// Receive blocks until a message has been sent, consumes it, and wakes a
// waiting sender.
func (p *Port) Receive(caller sched.Runnable) int {
	p.lock.Acquire(caller)
	for p.slotEmpty {
		p.receiverReady.Wait(p.lock, caller)
	}
	msg := p.slot
	p.slotEmpty = true
	p.senderReady.Signal()
	p.lock.Release(caller)
	return msg
}
