//go:build linux

package uthread

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/nvidia/go-uthread/internal/tcb"
)

var (
	registryMu sync.Mutex
	registry   = map[int]*Scheduler{}
)

// currentScheduler returns the Scheduler for the calling OS thread,
// creating one on first use. Callers must have called runtime.LockOSThread
// before ever calling a package-level function (Create, Yield, ...) —
// otherwise the Go runtime may move this goroutine to a different OS
// thread between calls, silently splitting its uthread state across two
// registry entries.
func currentScheduler() *Scheduler {
	tid := unix.Gettid()

	registryMu.Lock()
	defer registryMu.Unlock()

	s, ok := registry[tid]
	if !ok {
		var err error
		s, err = New(DefaultOptions())
		if err != nil {
			// DefaultOptions never preallocates, so New cannot fail here.
			panic(err)
		}
		registry[tid] = s
	}
	return s
}

// Create is the package-level convenience form of (*Scheduler).Create,
// operating on the calling OS thread's default Scheduler.
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
