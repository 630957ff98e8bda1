package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches the name of the offending message or model attribute to
// err, for example "Threshold" or "Aggregate". Nil err gives nil, so the
// result of a Validate call can be passed directly.
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) != 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, name: name, desc: description}
}

// AppendField collects the error of a single attribute. A message
// validation calls it once per attribute and returns the result.
func AppendField(errs error, name string, err error) error {
	return Append(errs, Field(name, err, ""))
}

// FieldErrors returns all errors attached to the named attribute, looking
// through wrapped and collected errors.
func FieldErrors(err error, name string) []error {
	var found []error
	for !isNilErr(err) {
		switch e := err.(type) {
		case *fieldError:
			if e.name == name {
				return append(found, err)
			}
			err = e.parent
		case unpacker:
			for _, inner := range e.Unpack() {
				found = append(found, FieldErrors(inner, name)...)
			}
			return found
		case causer:
			err = e.Cause()
		default:
			return found
		}
	}
	return found
}

type fieldError struct {
	parent error
	name   string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("%s: %s", e.name, e.parent)
	}
	return fmt.Sprintf("%s: %s: %s", e.name, e.desc, e.parent)
}

func (e *fieldError) Cause() error {
	return e.parent
}
