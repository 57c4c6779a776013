//go:build cgo

package ctx

/*
#include <stdint.h>

// go_entry_trampoline is set once, by SetEntry, to the cgo-exported Go
// function that every uthread's fresh stack ends up calling into. The
// reference C implementation passes the entry function as a parameter on
// every launch call; cgo cannot marshal a Go func value as a C function
// pointer on each call, so it is registered once instead. The handle
// (opaque to C) is what varies per call and identifies the uthread.
typedef void (*entry_trampoline_t)(uintptr_t handle);
static entry_trampoline_t go_entry_trampoline = 0;

static void ctx_set_trampoline(entry_trampoline_t fn) {
    go_entry_trampoline = fn;
}

#if defined(__x86_64__)

// callee-saved layout: [rbx, rsp, rbp, r12, r13, r14, r15]
#define NUM_SAVED_REGS 7

__attribute__((naked)) void launch_first_uthread(uintptr_t handle, void *stack_top, uint64_t *host_save) {
    __asm__ volatile (
        "movq %rbx, 0(%rdx)\n"
        "movq %rsp, 8(%rdx)\n"
        "movq %rbp, 16(%rdx)\n"
        "movq %r12, 24(%rdx)\n"
        "movq %r13, 32(%rdx)\n"
        "movq %r14, 40(%rdx)\n"
        "movq %r15, 48(%rdx)\n"
        "movq %rsi, %rsp\n"
        "movq go_entry_trampoline(%rip), %rax\n"
        "jmp *%rax\n"
    );
}

__attribute__((naked)) void restore_main_thread(uint64_t *host_save) {
    __asm__ volatile (
        "movq 0(%rdi), %rbx\n"
        "movq 8(%rdi), %rsp\n"
        "movq 16(%rdi), %rbp\n"
        "movq 24(%rdi), %r12\n"
        "movq 32(%rdi), %r13\n"
        "movq 40(%rdi), %r14\n"
        "movq 48(%rdi), %r15\n"
        "ret\n"
    );
}

__attribute__((naked)) void switch_uthread(uint64_t *next_regs, uint64_t *this_regs) {
    __asm__ volatile (
        "movq %rbx, 0(%rsi)\n"
        "movq %rsp, 8(%rsi)\n"
        "movq %rbp, 16(%rsi)\n"
        "movq %r12, 24(%rsi)\n"
        "movq %r13, 32(%rsi)\n"
        "movq %r14, 40(%rsi)\n"
        "movq %r15, 48(%rsi)\n"
        "movq 0(%rdi), %rbx\n"
        "movq 8(%rdi), %rsp\n"
        "movq 16(%rdi), %rbp\n"
        "movq 24(%rdi), %r12\n"
        "movq 32(%rdi), %r13\n"
        "movq 40(%rdi), %r14\n"
        "movq 48(%rdi), %r15\n"
        "ret\n"
    );
}

__attribute__((naked)) void backup_and_launch_uthread(uintptr_t handle, void *stack_top, uint64_t *this_regs) {
    __asm__ volatile (
        "movq %rbx, 0(%rdx)\n"
        "movq %rsp, 8(%rdx)\n"
        "movq %rbp, 16(%rdx)\n"
        "movq %r12, 24(%rdx)\n"
        "movq %r13, 32(%rdx)\n"
        "movq %r14, 40(%rdx)\n"
        "movq %r15, 48(%rdx)\n"
        "movq %rsi, %rsp\n"
        "movq go_entry_trampoline(%rip), %rax\n"
        "jmp *%rax\n"
    );
}

__attribute__((naked)) void restore_uthread(uint64_t *next_regs) {
    __asm__ volatile (
        "movq 0(%rdi), %rbx\n"
        "movq 8(%rdi), %rsp\n"
        "movq 16(%rdi), %rbp\n"
        "movq 24(%rdi), %r12\n"
        "movq 32(%rdi), %r13\n"
        "movq 40(%rdi), %r14\n"
        "movq 48(%rdi), %r15\n"
        "ret\n"
    );
}

#elif defined(__aarch64__)

// callee-saved layout: [d8-d15, sp, x19-x30]
#define NUM_SAVED_REGS 21

__attribute__((naked)) void launch_first_uthread(uintptr_t handle, void *stack_top, uint64_t *host_save) {
    __asm__ volatile (
        "stp d8,  d9,  [x2, #0]\n"
        "stp d10, d11, [x2, #16]\n"
        "stp d12, d13, [x2, #32]\n"
        "stp d14, d15, [x2, #48]\n"
        "mov x3, sp\n"
        "str x3, [x2, #64]\n"
        "stp x19, x20, [x2, #72]\n"
        "stp x21, x22, [x2, #88]\n"
        "stp x23, x24, [x2, #104]\n"
        "stp x25, x26, [x2, #120]\n"
        "stp x27, x28, [x2, #136]\n"
        "stp x29, x30, [x2, #152]\n"
        "mov sp, x1\n"
        "adrp x3, go_entry_trampoline\n"
        "ldr x3, [x3, #:lo12:go_entry_trampoline]\n"
        "br x3\n"
    );
}

__attribute__((naked)) void restore_main_thread(uint64_t *host_save) {
    __asm__ volatile (
        "ldp d8,  d9,  [x0, #0]\n"
        "ldp d10, d11, [x0, #16]\n"
        "ldp d12, d13, [x0, #32]\n"
        "ldp d14, d15, [x0, #48]\n"
        "ldr x3, [x0, #64]\n"
        "mov sp, x3\n"
        "ldp x19, x20, [x0, #72]\n"
        "ldp x21, x22, [x0, #88]\n"
        "ldp x23, x24, [x0, #104]\n"
        "ldp x25, x26, [x0, #120]\n"
        "ldp x27, x28, [x0, #136]\n"
        "ldp x29, x30, [x0, #152]\n"
        "ret\n"
    );
}

__attribute__((naked)) void switch_uthread(uint64_t *next_regs, uint64_t *this_regs) {
    __asm__ volatile (
        "stp d8,  d9,  [x1, #0]\n"
        "stp d10, d11, [x1, #16]\n"
        "stp d12, d13, [x1, #32]\n"
        "stp d14, d15, [x1, #48]\n"
        "mov x3, sp\n"
        "str x3, [x1, #64]\n"
        "stp x19, x20, [x1, #72]\n"
        "stp x21, x22, [x1, #88]\n"
        "stp x23, x24, [x1, #104]\n"
        "stp x25, x26, [x1, #120]\n"
        "stp x27, x28, [x1, #136]\n"
        "stp x29, x30, [x1, #152]\n"
        "ldp d8,  d9,  [x0, #0]\n"
        "ldp d10, d11, [x0, #16]\n"
        "ldp d12, d13, [x0, #32]\n"
        "ldp d14, d15, [x0, #48]\n"
        "ldr x3, [x0, #64]\n"
        "mov sp, x3\n"
        "ldp x19, x20, [x0, #72]\n"
        "ldp x21, x22, [x0, #88]\n"
        "ldp x23, x24, [x0, #104]\n"
        "ldp x25, x26, [x0, #120]\n"
        "ldp x27, x28, [x0, #136]\n"
        "ldp x29, x30, [x0, #152]\n"
        "ret\n"
    );
}

__attribute__((naked)) void backup_and_launch_uthread(uintptr_t handle, void *stack_top, uint64_t *this_regs) {
    __asm__ volatile (
        "stp d8,  d9,  [x2, #0]\n"
        "stp d10, d11, [x2, #16]\n"
        "stp d12, d13, [x2, #32]\n"
        "stp d14, d15, [x2, #48]\n"
        "mov x3, sp\n"
        "str x3, [x2, #64]\n"
        "stp x19, x20, [x2, #72]\n"
        "stp x21, x22, [x2, #88]\n"
        "stp x23, x24, [x2, #104]\n"
        "stp x25, x26, [x2, #120]\n"
        "stp x27, x28, [x2, #136]\n"
        "stp x29, x30, [x2, #152]\n"
        "mov sp, x1\n"
        "adrp x3, go_entry_trampoline\n"
        "ldr x3, [x3, #:lo12:go_entry_trampoline]\n"
        "br x3\n"
    );
}

__attribute__((naked)) void restore_uthread(uint64_t *next_regs) {
    __asm__ volatile (
        "ldp d8,  d9,  [x0, #0]\n"
        "ldp d10, d11, [x0, #16]\n"
        "ldp d12, d13, [x0, #32]\n"
        "ldp d14, d15, [x0, #48]\n"
        "ldr x3, [x0, #64]\n"
        "mov sp, x3\n"
        "ldp x19, x20, [x0, #72]\n"
        "ldp x21, x22, [x0, #88]\n"
        "ldp x23, x24, [x0, #104]\n"
        "ldp x25, x26, [x0, #120]\n"
        "ldp x27, x28, [x0, #136]\n"
        "ldp x29, x30, [x0, #152]\n"
        "ret\n"
    );
}

#else
#error "go-uthread: unsupported architecture for the cgo context-switch backend; build with CGO_ENABLED=0 to use the portable fallback"
#endif

extern void goEntryTrampoline(uintptr_t handle);
*/
import "C"

import "unsafe"

// SaveArea is the callee-saved register and stack-pointer store for one
// context. Sized to the larger of the two supported architectures' layouts
// (AArch64: 21 slots); amd64 uses only the first 7.
type SaveArea [21]uint64

var entryFn EntryFunc

// SetEntry registers the function every freshly launched uthread stack
// calls into. The scheduler package calls this exactly once at init.
func SetEntry(fn EntryFunc) {
	entryFn = fn
	C.ctx_set_trampoline((C.entry_trampoline_t)(C.goEntryTrampoline))
}

//export goEntryTrampoline
func goEntryTrampoline(handle C.uintptr_t) {
	if entryFn != nil {
		entryFn(uintptr(handle))
	}
}

func saveAreaPtr(s *SaveArea) *C.uint64_t {
	return (*C.uint64_t)(unsafe.Pointer(&s[0]))
}

// LaunchFirst saves the current callee-saved state and SP into hostSave,
// switches SP to stackTop, and calls the registered EntryFunc(handle). The
// entry function is expected never to return via this path.
func LaunchFirst(handle uintptr, stackTop unsafe.Pointer, hostSave *SaveArea) {
	C.launch_first_uthread(C.uintptr_t(handle), stackTop, saveAreaPtr(hostSave))
}

// RestoreHost loads callee-saved state from hostSave and returns to the
// instruction after the original LaunchFirst call.
func RestoreHost(hostSave *SaveArea) {
	C.restore_main_thread(saveAreaPtr(hostSave))
}

// SwitchUthread saves the current context into thisSave and resumes the
// context previously saved into nextSave.
func SwitchUthread(nextSave, thisSave *SaveArea) {
	C.switch_uthread(saveAreaPtr(nextSave), saveAreaPtr(thisSave))
}

// BackupAndLaunch saves the current context into thisSave, switches SP to
// stackTop, and calls the registered EntryFunc(handle). Symmetric to
// LaunchFirst but saves into a TCB's SaveArea rather than the host's.
func BackupAndLaunch(handle uintptr, stackTop unsafe.Pointer, thisSave *SaveArea) {
	C.backup_and_launch_uthread(C.uintptr_t(handle), stackTop, saveAreaPtr(thisSave))
}

// RestoreUthread loads callee-saved state from nextSave. Used when the
// current context is being abandoned rather than saved (the caller has
// already unlinked it).
func RestoreUthread(nextSave *SaveArea) {
	C.restore_uthread(saveAreaPtr(nextSave))
}
