package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If appended error is a group error itself, it is flattened. Result is a
// single group with all errors of the original ones.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, e)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiErr represents a group of errors. It implements the unpacker interface
// so that Is and FieldErrors can look into every member.
type multiErr []error

func (m multiErr) Error() string {
	msgs := make([]string, len(m))
	for i, e := range m {
		msgs[i] = fmt.Sprintf("* %s", e)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m), strings.Join(msgs, "\n\t"))
}

// ABCICode returns the code of the first error, consistent with the fail fast
// approach.
func (m multiErr) ABCICode() uint32 {
	return abciCode(m[0])
}

// Unpack returns all grouped errors.
func (m multiErr) Unpack() []error {
	return m
}

var _ unpacker = multiErr(nil)
