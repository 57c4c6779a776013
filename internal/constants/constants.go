// Package constants holds compile-time sizing for the uthread core.
package constants

const (
	// StackSize is the size in bytes of a TCB's embedded stack region.
	StackSize = 1 << 21 // 2 MiB

	// StackAlignment is the required alignment, in bytes, of a stack region
	// and of the top-of-stack pointer handed to a fresh uthread.
	StackAlignment = 16

	// StackHeadroom is reserved at the top of the stack region so the first
	// call inside a freshly-launched uthread observes a correctly aligned SP.
	StackHeadroom = 16

	// DefaultPreallocate is the pool size a Scheduler starts with when no
	// explicit Options.Preallocate is given.
	DefaultPreallocate = 0

	// MaxSavedRegisters is sized to the larger of the two supported
	// architectures' callee-saved register layouts (AArch64: d8-d15, sp,
	// x19-x30 = 21 slots). amd64's 7-slot layout (rbx, rsp, rbp, r12-r15)
	// uses only the first 7 and leaves the rest unused.
	MaxSavedRegisters = 21
)
