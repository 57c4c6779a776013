package uthread

import "github.com/nvidia/go-uthread/internal/constants"

// Re-exported sizing constants for callers that want to reason about stack
// geometry without reaching into internal/constants.
const (
	DefaultStackSize   = constants.StackSize
	StackAlignment     = constants.StackAlignment
	StackHeadroom      = constants.StackHeadroom
	DefaultPreallocate = constants.DefaultPreallocate
	MaxSavedRegisters  = constants.MaxSavedRegisters
)
