/*
Package assert holds the few assertions the ledger tests share. Each one
stops the test on the first failure.
*/
package assert

import (
	"reflect"

	"github.com/iov-one/spades/errors"
)

// Tester is the part of testing.TB the assertions use.
type Tester interface {
	Helper()
	Logf(string, ...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails unless value is nil or a nil pointer, slice, map, channel,
// function or interface. Errors are printed with their stack trace.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		t.Fatalf("want nil, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// Equal fails unless want and got are deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("want %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics fails unless fn panics.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("want a panic")
		}
	}()
	fn()
}

// IsErr fails unless got is want or, for registered errors, was wrapped
// from want. Nil matches only nil.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if e, ok := want.(interface{ Is(error) bool }); ok && e.Is(got) {
		return
	}
	t.Fatalf("want %q error, got %+v", want, got)
}

// FieldError fails unless err carries exactly one error for the named
// message attribute and that error is want. Use a nil want to require that
// the attribute passed validation.
func FieldError(t Tester, err error, field string, want *errors.Error) {
	t.Helper()
	found := errors.FieldErrors(err, field)
	if want == nil && len(found) == 0 {
		return
	}
	if want != nil && len(found) == 1 && want.Is(found[0]) {
		return
	}
	for i, e := range found {
		t.Logf("%s error %d: %s", field, i+1, e)
	}
	if want == nil {
		t.Fatalf("want %s to be valid, got %d errors", field, len(found))
		return
	}
	t.Fatalf("want a single %q error for %s, got %d errors", want, field, len(found))
}
