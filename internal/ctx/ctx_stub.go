//go:build !cgo

package ctx

import "unsafe"

// SaveArea is the portable fallback's save slot. There is no register state
// to save on this backend — every uthread still runs on a real Go stack —
// only a rendezvous channel used to hand control back to whichever
// goroutine previously suspended at this point. The channel is created
// lazily, the first time a context is saved into, mirroring how the cgo
// backend's regs array is only meaningful after a TCB's first suspension
// (spec invariant: regs[sp] is meaningful only once run_cnt > 0).
type SaveArea struct {
	resume chan struct{}
}

func (s *SaveArea) ensure() {
	if s.resume == nil {
		s.resume = make(chan struct{})
	}
}

var entryFn EntryFunc

// SetEntry registers the function every freshly launched uthread calls
// into. The scheduler package calls this exactly once at init.
func SetEntry(fn EntryFunc) {
	entryFn = fn
}

func runEntry(handle uintptr) {
	if entryFn != nil {
		entryFn(handle)
	}
}

// LaunchFirst starts handle running on a new goroutine and blocks the
// caller — the host — until the uthread regime drains back via
// RestoreHost. stackTop is unused: this backend never leaves the Go stack.
func LaunchFirst(handle uintptr, _ unsafe.Pointer, hostSave *SaveArea) {
	hostSave.resume = make(chan struct{})
	go runEntry(handle)
	<-hostSave.resume
}

// RestoreHost wakes the blocked LaunchFirst caller.
func RestoreHost(hostSave *SaveArea) {
	hostSave.resume <- struct{}{}
}

// SwitchUthread wakes nextSave's goroutine and blocks the current one (on
// thisSave) until it is resumed in turn.
func SwitchUthread(nextSave, thisSave *SaveArea) {
	thisSave.ensure()
	nextSave.resume <- struct{}{}
	<-thisSave.resume
}

// BackupAndLaunch starts handle running on a new goroutine and blocks the
// caller (on thisSave) until it is resumed.
func BackupAndLaunch(handle uintptr, _ unsafe.Pointer, thisSave *SaveArea) {
	thisSave.ensure()
	go runEntry(handle)
	<-thisSave.resume
}

// RestoreUthread wakes nextSave's goroutine without expecting to be resumed
// itself — the caller has already been unlinked and is retiring.
func RestoreUthread(nextSave *SaveArea) {
	nextSave.resume <- struct{}{}
}
