package lisp

import (
	"errors"
	"fmt"
)

// ErrImmutable is returned by mutation of a frozen cons or vector.  Errors
// produced by SetCar, SetCdr, TryMut and the builtins wrapping them match
// it with errors.Is.
var ErrImmutable = errors.New("attempt to modify constant data")

// EvalError is the failure channel of the evaluator.  Two disjoint failure
// categories share it: ordinary errors, which carry a message and a call
// stack, and throw signals, which carry no message at all; a throw's tag
// and value travel out of band in the Environment's thrown slot.  Only a
// catch form with a matching tag intercepts a signal; condition-case
// intercepts only ordinary errors.
type EvalError struct {
	// Stack holds the calls the error unwound through, innermost first.
	// Stack is nil when the error escaped no function call.
	Stack *CallStack

	err error
}

func newEvalError(err error) *EvalError {
	return &EvalError{err: err}
}

func evalErrorf(format string, v ...interface{}) *EvalError {
	return &EvalError{err: fmt.Errorf(format, v...)}
}

// throwSignal returns the message-less error used to unwind a throw.
func throwSignal() *EvalError {
	return &EvalError{}
}

// IsThrow returns true if e is a throw signal rather than an ordinary
// error.
func (e *EvalError) IsThrow() bool {
	return e.err == nil
}

// Error returns the error message.  Throw signals that escape the top level
// render as a generic message; the throw's tag lives in the environment's
// thrown slot, not in the error.
func (e *EvalError) Error() string {
	if e.err == nil {
		return "no catch handler for throw"
	}
	return e.err.Error()
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (e *EvalError) Unwrap() error {
	return e.err
}

func (e *EvalError) addFrame(f CallFrame) *EvalError {
	if e.Stack == nil {
		e.Stack = &CallStack{}
	}
	e.Stack.Push(f)
	return e
}

// asEvalError normalizes an arbitrary error into an *EvalError so frames
// can accumulate while the original cause stays visible to errors.As.
func asEvalError(err error) *EvalError {
	var e *EvalError
	if errors.As(err, &e) {
		return e
	}
	return newEvalError(err)
}

// An ArgError reports a call or special form invoked with the wrong number
// of arguments.
type ArgError struct {
	Name     string
	Expected int
	Actual   int
}

func argErrorf(name string, expected, actual int) *EvalError {
	return newEvalError(&ArgError{Name: name, Expected: expected, Actual: actual})
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("%s: expected %d argument(s) (got %d)", e.Name, e.Expected, e.Actual)
}

// A TypeError reports a value of the wrong shape in a context that requires
// a specific type.
type TypeError struct {
	Expected string
	Actual   LType
}

func typeErrorf(expected string, v LVal) *EvalError {
	return newEvalError(&TypeError{Expected: expected, Actual: v.Type})
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("expected %s (got %s)", e.Expected, e.Actual)
}
