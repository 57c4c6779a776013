package uthread

import (
	"errors"
	"fmt"
)

// Code classifies an Error. Per spec, there are exactly two kinds: an
// allocation failure (returned from Create/Preallocate) and the internal
// misuse marker used only for diagnostic logging when an accessor is called
// outside a uthread — accessors themselves always return 0, never an error.
type Code string

const (
	ErrCodeAlloc      Code = "allocation failure"
	ErrCodeNotRunning Code = "not running"
)

// Error is a structured error carrying the failing operation and a code for
// programmatic matching via errors.Is.
type Error struct {
	Op    string
	Code  Code
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		return fmt.Sprintf("uthread: %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("uthread: %s", msg)
}

// Unwrap exposes the wrapped error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is matches by Code, so callers can compare against another *Error via
// errors.Is without caring about Op or Msg.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// NewAllocError wraps inner (which may be nil) as an ErrCodeAlloc failure
// from the named operation — Create or Preallocate.
func NewAllocError(op string, inner error) *Error {
	e := &Error{Op: op, Code: ErrCodeAlloc, Inner: inner}
	if inner != nil {
		e.Msg = inner.Error()
	}
	return e
}

func newNotRunningError(op string) *Error {
	return &Error{Op: op, Code: ErrCodeNotRunning, Msg: "called outside a uthread"}
}

// IsCode reports whether err is an *Error with the given Code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
