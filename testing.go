package uthread

import (
	"sync"

	"github.com/nvidia/go-uthread/internal/tcb"
)

// RecordingObserver implements Observer and records every callback for
// later assertion, mirroring the teacher's MockBackend call-count tracking.
type RecordingObserver struct {
	mu sync.Mutex

	Creates    []uint64
	Dispatches []DispatchEvent
	Yields     []uint64
	Retires    []uint64
	HostDrains int
}

// DispatchEvent records one ObserveDispatch call.
type DispatchEvent struct {
	ID       uint64
	RunCount uint64
	Fresh    bool
}

func (r *RecordingObserver) ObserveCreate(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Creates = append(r.Creates, id)
}

func (r *RecordingObserver) ObserveDispatch(id uint64, runCount uint64, fresh bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Dispatches = append(r.Dispatches, DispatchEvent{ID: id, RunCount: runCount, Fresh: fresh})
}

func (r *RecordingObserver) ObserveYield(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Yields = append(r.Yields, id)
}

func (r *RecordingObserver) ObserveRetire(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Retires = append(r.Retires, id)
}

func (r *RecordingObserver) ObserveHostDrain() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.HostDrains++
}

// CallCounts summarizes how many times each callback fired.
func (r *RecordingObserver) CallCounts() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return map[string]int{
		"create":     len(r.Creates),
		"dispatch":   len(r.Dispatches),
		"yield":      len(r.Yields),
		"retire":     len(r.Retires),
		"host_drain": r.HostDrains,
	}
}

var _ Observer = (*RecordingObserver)(nil)

// CountingBody returns a uthread body that increments counter once with no
// internal yield, for end-to-end scenarios with non-yielding bodies.
func CountingBody(counter *int) tcb.Func {
	return func(any) {
		*counter++
	}
}

// YieldingBody returns a uthread body that increments counter, yields, and
// repeats that pair yields times before a final increment and return — so
// that ThisRunCount observed at each entry is 1, 2, ..., yields+1. arg must
// be the *Scheduler the body was created on, since Yield is a method on it.
func YieldingBody(counter *int, yields int) tcb.Func {
	return func(arg any) {
		s := arg.(*Scheduler)
		for i := 0; i < yields; i++ {
			*counter++
			s.Yield()
		}
		*counter++
	}
}

// SpawningBody returns a uthread body that creates n additional uthreads
// running CountingBody(counter) before incrementing counter itself and
// returning, for the dynamic sub-thread-creation scenario. arg must be the
// *Scheduler the body was created on.
func SpawningBody(counter *int, n int) tcb.Func {
	return func(arg any) {
		s := arg.(*Scheduler)
		for i := 0; i < n; i++ {
			_ = s.Create(CountingBody(counter), s)
		}
		*counter++
	}
}
