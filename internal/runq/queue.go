// Package runq implements the two intrusive, per-scheduler TCB lists: the
// circular doubly-linked run queue and the singly-linked free pool.
// Neither type is safe for concurrent use — by design, per spec §5, there is
// exactly one goroutine (the OS thread that owns the scheduler) ever
// touching either list.
package runq

import "github.com/nvidia/go-uthread/internal/tcb"

// Queue is a circular doubly-linked run queue. head is both "currently
// running" (regime active) and "next to dispatch" (regime inactive).
type Queue struct {
	head *tcb.TCB
}

// Empty reports whether the queue has no members.
func (q *Queue) Empty() bool { return q.head == nil }

// Head returns the current head, or nil if the queue is empty.
func (q *Queue) Head() *tcb.TCB { return q.head }

// Append adds t to the tail of the queue.
func (q *Queue) Append(t *tcb.TCB) {
	if q.head == nil {
		t.Next = t
		t.Prev = t
		q.head = t
		return
	}
	tail := q.head.Prev
	tail.Next = t
	q.head.Prev = t
	t.Next = q.head
	t.Prev = tail
}

// RemoveHead unlinks and returns the current head. The new head (if any)
// becomes q.head; it is the caller's responsibility to advance q.head to
// something else first if that's what's wanted (see Advance).
func (q *Queue) RemoveHead() *tcb.TCB {
	t := q.head
	if t == nil {
		return nil
	}
	if t.Next == t {
		q.head = nil
	} else {
		t.Prev.Next = t.Next
		t.Next.Prev = t.Prev
		q.head = t.Next
	}
	t.Next = nil
	t.Prev = nil
	return t
}

// Advance sets q.head to the current head's Next link, without unlinking
// anything. Used by Yield to rotate without retiring.
func (q *Queue) Advance() {
	if q.head != nil {
		q.head = q.head.Next
	}
}

// Size counts queue members in O(n), walking from head to head.Prev (tail).
func (q *Queue) Size() int {
	if q.head == nil {
		return 0
	}
	n := 1
	for t := q.head.Next; t != q.head; t = t.Next {
		n++
	}
	return n
}
