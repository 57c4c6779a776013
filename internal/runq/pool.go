package runq

import "github.com/nvidia/go-uthread/internal/tcb"

// Pool is a singly-linked (via Next) LIFO stack of retired TCBs. Pool
// members retain ID; every other field is logically uninitialized until
// Create draws the TCB back out and calls Reset.
type Pool struct {
	head *tcb.TCB
}

// Push retires t onto the pool.
func (p *Pool) Push(t *tcb.TCB) {
	t.Next = p.head
	t.Prev = nil
	p.head = t
}

// Pop draws the most recently retired TCB from the pool, or nil if empty.
func (p *Pool) Pop() *tcb.TCB {
	t := p.head
	if t == nil {
		return nil
	}
	p.head = t.Next
	t.Next = nil
	return t
}

// Size counts pool members in O(n).
func (p *Pool) Size() int {
	n := 0
	for t := p.head; t != nil; t = t.Next {
		n++
	}
	return n
}

// Drain removes every TCB from the pool, calling destroy on each. It stops
// and returns the first error encountered, leaving any remaining members
// still in the pool — matching the no-rollback contract Preallocate also
// follows (spec §4.3): a partial failure preserves whatever state existed,
// it does not undo it.
func (p *Pool) Drain(destroy func(*tcb.TCB) error) error {
	for p.head != nil {
		t := p.Pop()
		if err := destroy(t); err != nil {
			// Put it back so the pool's accounting stays consistent with
			// what was actually freed.
			t.Next = p.head
			p.head = t
			return err
		}
	}
	return nil
}
