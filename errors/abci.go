package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// SuccessABCICode is the code of a successful ABCI response.
const SuccessABCICode = 0

// Errors that are not registered share one code and, outside of debug
// mode, one log message, so that details of the store or of a library do
// not leak to clients.
const (
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

type coder interface {
	ABCICode() uint32
}

// ABCIInfo returns the code and log of the ABCI response for err. Debug
// mode logs the full error with its stack trace.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalABCICode:
		return code, internalABCILog
	default:
		return code, err.Error()
	}
}

// ABCIError turns the code and log of an ABCI response back into an error.
// A registered code gives an error matching the registered one with Is.
// Only clients of the ledger need it.
func ABCIError(code uint32, log string) error {
	if reg, ok := usedCodes[code]; ok {
		return Wrap(reg, log)
	}
	return Wrap(&Error{code: code, desc: "unknown"}, log)
}

// abciCode returns the code of the first error in the cause chain of err
// that carries one.
func abciCode(err error) uint32 {
	if isNilErr(err) {
		return SuccessABCICode
	}
	for err != nil {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		cause, ok := err.(causer)
		if !ok {
			break
		}
		err = cause.Cause()
	}
	return internalABCICode
}

// Redact replaces an unregistered error or a recovered panic by a generic
// internal error, leaving registered errors as they are. In debug mode err
// is returned unchanged.
func Redact(err error, debug bool) error {
	if debug || isNilErr(err) {
		return err
	}
	if ErrPanic.Is(err) || abciCode(err) == internalABCICode {
		return errors.New(internalABCILog)
	}
	return err
}
