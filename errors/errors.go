package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors shared by all extensions. Extensions register their own
// codes from 100 up, the wallet from 1100.
var (
	ErrUnauthorized = Register(2, "unauthorized")
	ErrNotFound     = Register(3, "not found")
	ErrMsg          = Register(4, "invalid message")
	ErrModel        = Register(5, "invalid model")
	ErrDuplicate    = Register(6, "duplicate")

	// ErrHuman marks a programming error, such as a nil destination.
	ErrHuman = Register(7, "coding error")

	ErrEmpty    = Register(9, "value is empty")
	ErrState    = Register(10, "invalid state")
	ErrType     = Register(11, "invalid type")
	ErrAmount   = Register(13, "invalid amount")
	ErrInput    = Register(14, "invalid input")
	ErrOverflow = Register(16, "value overflow")
	ErrDatabase = Register(17, "database")

	// ErrPanic wraps a recovered panic. Its message may hold internals and
	// is redacted outside of debug mode.
	ErrPanic = Register(111222, "panic")
)

// usedCodes maps every registered code to its root error. Code 1 is taken
// by errors that were never registered.
var usedCodes = map[uint32]*Error{
	internalABCICode: {code: internalABCICode, desc: "internal"},
}

// Register returns a new root error with a code that must be unique across
// the program. It panics on a reused code, so call it from package
// variable declarations only.
func Register(code uint32, description string) *Error {
	if prev, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error code %d already registered as %q", code, prev.desc))
	}
	e := &Error{code: code, desc: description}
	usedCodes[code] = e
	return e
}

// Error is a root error. Errors returned at runtime wrap one of them, which
// gives them an ABCI code and lets callers test them with Is.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string { return e.desc }

func (e Error) ABCICode() uint32 { return e.code }

// New is Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is Wrapf(e, format, args...).
func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrapf(e, format, args...)
}

// Is reports whether e is the root of err. Wrapped errors are unwrapped
// and a collection of errors matches when any of its members does. A nil
// root matches only a nil error.
func (e *Error) Is(err error) bool {
	if e == nil {
		return isNilErr(err)
	}
	for err != nil {
		if err == e {
			return true
		}
		if u, ok := err.(unpacker); ok {
			for _, member := range u.Unpack() {
				if e.Is(member) {
					return true
				}
			}
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

// Wrap prefixes err with description. The innermost wrap records a stack
// trace. A nil err gives nil, so Wrap can be applied to a returned error
// without checking it first.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{parent: err, msg: description}
}

// Wrapf is Wrap with a formatted description.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Recover turns a panic into an ErrPanic assigned to *err. It must be
// deferred directly.
//
//	func (l *Ledger) run(...) (err error) {
//		defer errors.Recover(&err)
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type causer interface {
	Cause() error
}

// unpacker is implemented by collections of errors, see Append.
type unpacker interface {
	Unpack() []error
}

// isNilErr also treats a typed nil pointer held in an error as nil.
func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	switch v := reflect.ValueOf(err); v.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
