package runtime

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Signals: language-level failures returned through the error channel
// ---------------------------------------------------------------------------

// ErrorClass identifies which language-level error hierarchy a signal
// belongs to. The classes mirror the constructors a program would see.
type ErrorClass int

const (
	ClassTypeError ErrorClass = iota
	ClassReferenceError
	ClassRangeError
)

// String returns the constructor name for the class.
func (c ErrorClass) String() string {
	switch c {
	case ClassTypeError:
		return "TypeError"
	case ClassReferenceError:
		return "ReferenceError"
	case ClassRangeError:
		return "RangeError"
	default:
		return "Error"
	}
}

// Signal is a language-level error value. Call and Construct surface every
// user-visible failure as a *Signal through their error return; the
// subsystem never converts one into a Go panic or a process abort.
type Signal struct {
	Class   ErrorClass
	Message string
}

func (s *Signal) Error() string {
	return s.Class.String() + ": " + s.Message
}

// NewTypeError creates a TypeError-class signal.
func NewTypeError(format string, args ...interface{}) *Signal {
	return &Signal{Class: ClassTypeError, Message: fmt.Sprintf(format, args...)}
}

// NewReferenceError creates a ReferenceError-class signal.
func NewReferenceError(format string, args ...interface{}) *Signal {
	return &Signal{Class: ClassReferenceError, Message: fmt.Sprintf(format, args...)}
}

// NewRangeError creates a RangeError-class signal.
func NewRangeError(format string, args ...interface{}) *Signal {
	return &Signal{Class: ClassRangeError, Message: fmt.Sprintf(format, args...)}
}

// notConstructable is the failure for `new` applied to a function whose
// constructor kind is NonConstructor. It is never downgraded to a call.
func notConstructable(name string) *Signal {
	if name == "" {
		name = "anonymous"
	}
	return NewTypeError("%s is not a constructor", name)
}

// unboundThis is the failure for reading `this` in a derived constructor
// before super() has run.
func unboundThis() *Signal {
	return NewReferenceError("must call super constructor before accessing 'this'")
}

// SignalClass reports whether err is a *Signal of the given class.
func SignalClass(err error, class ErrorClass) bool {
	var s *Signal
	if errors.As(err, &s) {
		return s.Class == class
	}
	return false
}

// ---------------------------------------------------------------------------
// Thrown script values
// ---------------------------------------------------------------------------

// Thrown carries a value thrown by a function body. Call and Construct pass
// it through unchanged; only the unwind bookkeeping of the current frame
// runs on the way out.
type Thrown struct {
	Value Value
}

func (t *Thrown) Error() string {
	return "uncaught exception"
}

// Throw wraps a script value as an abrupt completion.
func Throw(v Value) error {
	return &Thrown{Value: v}
}
