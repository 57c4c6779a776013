// Package tcb defines the uthread control block: per-uthread identity, the
// callback to invoke, intrusive list links, the register save area, and a
// dedicated native stack.
package tcb

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/nvidia/go-uthread/internal/constants"
	"github.com/nvidia/go-uthread/internal/ctx"
)

// Func is the body a uthread runs. arg is whatever was passed to Create.
type Func func(arg any)

// TCB is one uthread control block. Exactly one of three places ever holds a
// TCB at a time: the pool, the run queue, or transiently in flight during a
// context switch (see spec invariant 1).
//
// TCB must never be relocated once created: Handle() is this struct's own
// address, and the context primitives are handed pointers to its Regs.
type TCB struct {
	// Next, Prev are intrusive links. Meaning depends on which list holds
	// this TCB: circular doubly-linked in the run queue, singly-linked
	// (Next only) in the pool.
	Next, Prev *TCB

	ID       uint64
	RunCount uint64
	Body     Func
	Arg      any

	// Regs is the callee-saved register and stack-pointer save area,
	// meaningful only once RunCount > 0.
	Regs ctx.SaveArea

	// Owner is the *uthread.Scheduler this TCB belongs to. Declared as any
	// to avoid an import cycle; the one registered ctx.EntryFunc asserts it
	// back to the concrete type.
	Owner any

	stack    []byte
	stackTop unsafe.Pointer
	guarded  bool
}

// Options configures the stack of a newly-allocated TCB.
type Options struct {
	// StackSize overrides constants.StackSize when non-zero.
	StackSize int
	// GuardPage, if true, makes the page immediately below the stack
	// inaccessible, turning a stack overflow into a segfault instead of
	// silent corruption. Optional per spec: overflow detection is not
	// required.
	GuardPage bool
}

// New allocates a TCB with a fresh native stack and the given id. The stack
// is a private anonymous mapping, grounded on the same mmap technique the
// teacher package uses for its per-queue I/O buffers.
func New(id uint64, opts Options) (*TCB, error) {
	size := opts.StackSize
	if size == 0 {
		size = constants.StackSize
	}

	mapSize := size
	if opts.GuardPage {
		mapSize += unix.Getpagesize()
	}

	mem, err := unix.Mmap(-1, 0, mapSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("tcb: mmap stack: %w", err)
	}

	stack := mem
	if opts.GuardPage {
		guardPage := unix.Getpagesize()
		if err := unix.Mprotect(mem[:guardPage], unix.PROT_NONE); err != nil {
			_ = unix.Munmap(mem)
			return nil, fmt.Errorf("tcb: mprotect guard page: %w", err)
		}
		stack = mem[guardPage:]
	}

	top := stackTopOf(stack)

	return &TCB{
		ID:       id,
		stack:    mem,
		stackTop: top,
		guarded:  opts.GuardPage,
	}, nil
}

// stackTopOf computes the top-of-stack pointer: StackHeadroom bytes below
// the region's upper bound, 16-byte aligned, per spec §4.2.
func stackTopOf(stack []byte) unsafe.Pointer {
	n := len(stack)
	top := n - constants.StackHeadroom
	top &^= (constants.StackAlignment - 1)
	return pointerFromSlice(stack, top)
}

// pointerFromSlice converts a slice index into an unsafe.Pointer via
// pointer indirection, the same trick the teacher's runner.go uses
// (pointerFromMmap) to satisfy go vet's unsafeptr checker for addresses
// derived from syscall-returned memory.
//
//go:noinline
func pointerFromSlice(b []byte, off int) unsafe.Pointer {
	addr := uintptr(unsafe.Pointer(&b[0])) + uintptr(off)
	return *(*unsafe.Pointer)(unsafe.Pointer(&addr))
}

// StackTop returns the top-of-stack pointer handed to the context-switch
// primitives when first launching this TCB.
func (t *TCB) StackTop() unsafe.Pointer {
	return t.stackTop
}

// Handle returns the opaque identifier the context-switch primitives pass
// through to the registered EntryFunc, from which the original *TCB can be
// recovered via HandleToTCB.
func (t *TCB) Handle() uintptr {
	return uintptr(unsafe.Pointer(t))
}

// HandleToTCB recovers the *TCB a Handle() was derived from.
func HandleToTCB(handle uintptr) *TCB {
	return (*TCB)(unsafe.Pointer(handle)) //nolint:govet // see Handle
}

// Reset clears per-lifecycle fields when a TCB is drawn from the pool or
// freshly allocated for Create, per spec §4.4: run_cnt resets to 0, body and
// arg are set, id is preserved.
func (t *TCB) Reset(body Func, arg any) {
	t.RunCount = 0
	t.Body = body
	t.Arg = arg
	t.Next = nil
	t.Prev = nil
}

// Destroy releases the TCB's stack memory. Only called by FreeUnused on
// pooled TCBs; never on a queued or in-flight TCB.
func (t *TCB) Destroy() error {
	if t.stack == nil {
		return nil
	}
	err := unix.Munmap(t.stack)
	t.stack = nil
	t.stackTop = nil
	return err
}
