package types

import (
	"fmt"
	"runtime"
)

// PanicError is stored in a task's future when the task panics.
type PanicError struct {
	// Value is the value passed to panic.
	Value any
	// Stack is the stack of the panicking goroutine, truncated to 4KiB.
	Stack []byte
}

// NewPanicError captures the current goroutine's stack. It is meant to be called
// from the deferred function that recovered v.
func NewPanicError(v any) *PanicError {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return &PanicError{
		Value: v,
		Stack: buf[:n],
	}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker panic: %v\nstack trace:\n%s", e.Value, e.Stack)
}

// Unwrap exposes the panic value when the task panicked with an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
