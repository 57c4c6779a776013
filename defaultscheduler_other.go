//go:build !linux

package uthread

import (
	"sync"

	"github.com/nvidia/go-uthread/internal/tcb"
)

// Non-Linux platforms have no cheap equivalent of a real OS thread id
// exposed to Go, so the package-level convenience API falls back to a
// single process-wide Scheduler rather than a per-OS-thread registry. This
// is correct only when the process drives uthreads from a single OS thread;
// callers needing true per-OS-thread isolation on these platforms should
// construct their own *Scheduler values directly instead of using the
// package-level functions.
var (
	fallbackOnce sync.Once
	fallbackSched *Scheduler
)

func currentScheduler() *Scheduler {
	fallbackOnce.Do(func() {
		s, err := New(DefaultOptions())
		if err != nil {
			panic(err)
		}
		fallbackSched = s
	})
	return fallbackSched
}

// Create is the package-level convenience form of (*Scheduler).Create,
// operating on the process-wide fallback Scheduler.
func Create(body tcb.Func, arg any) error { return currentScheduler().Create(body, arg) }

// Yield is the package-level convenience form of (*Scheduler).Yield.
func Yield() { currentScheduler().Yield() }

// ThisID is the package-level convenience form of (*Scheduler).ThisID.
func ThisID() uint64 { return currentScheduler().ThisID() }

// ThisRunCount is the package-level convenience form of
// (*Scheduler).ThisRunCount.
func ThisRunCount() uint64 { return currentScheduler().ThisRunCount() }

// PoolSize is the package-level convenience form of (*Scheduler).PoolSize.
func PoolSize() int { return currentScheduler().PoolSize() }

// QueueSize is the package-level convenience form of (*Scheduler).QueueSize.
func QueueSize() int { return currentScheduler().QueueSize() }

// Preallocate is the package-level convenience form of
// (*Scheduler).Preallocate.
func Preallocate(n int) error { return currentScheduler().Preallocate(n) }

// FreeUnused is the package-level convenience form of
// (*Scheduler).FreeUnused.
func FreeUnused() error { return currentScheduler().FreeUnused() }
