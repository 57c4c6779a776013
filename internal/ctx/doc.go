// Package ctx isolates the architecture-specific callee-saved-register and
// stack-pointer manipulation that context switching a uthread fundamentally
// requires. This cannot be expressed in safe Go; everything unsafe about the
// uthread core lives in this package and nowhere else.
//
// There are two implementations, selected at build time:
//
//   - ctx_cgo.go (build tag "cgo"): real register/stack switches via cgo +
//     inline assembly, for amd64 and arm64.
//   - ctx_stub.go (build tag "!cgo"): a portable fallback with the same
//     observable behavior, built from goroutines handed off over unbuffered
//     channels. Slower, but keeps the module buildable with CGO_ENABLED=0.
//
// Both implementations require the calling goroutine to have called
// runtime.LockOSThread before the first call into this package, and to keep
// using that same goroutine for every subsequent call against the same
// SaveArea values. Nothing here is safe to call concurrently.
package ctx

// EntryFunc is invoked on a freshly-launched uthread stack with the opaque
// handle that was passed to LaunchFirst or BackupAndLaunch. The
// scheduler registers exactly one EntryFunc for the process via SetEntry;
// the handle (not the function) identifies which uthread is running.
type EntryFunc func(handle uintptr)
