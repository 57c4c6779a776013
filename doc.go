// Package uthread implements a cooperative user-space threading core: many
// independent uthreads multiplexed onto a single OS thread via explicit
// Yield points, architecture-specific register/stack context switches, and
// intrusive pool/queue bookkeeping.
//
// A Scheduler is strictly single-OS-thread: it must be created and driven by
// exactly one goroutine that has called runtime.LockOSThread before the
// first Create or Yield, and must never be touched by any other goroutine
// for the rest of its life. There is no locking inside a Scheduler because
// there is no sharing to guard against.
//
// The package-level functions (Create, Yield, ThisID, ...) are a
// convenience wrapper around a registry of one Scheduler per OS thread on
// Linux, matching the reference implementation's thread-local globals; on
// other platforms they share a single process-wide Scheduler. Direct use
// of a *Scheduler is preferred when a caller wants explicit control over
// its lifetime.
package uthread
