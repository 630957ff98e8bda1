/*
Package errors implements custom error interfaces for spades.

The idea is to reuse as many errors from this package as possible and define
custom package errors when absolutely necessary. Use Register(code, description)
to declare a new root error. Every error returned by an extension should wrap
one of the registered root errors so that clients can distinguish the failure
kind by its code.

Create an error instance with ErrXyz.New("...") or errors.Wrap(err, "...") at
the point of creation to attach a stacktrace. If you wrap multiple times, only
the first wrap records the stacktrace.

Once you have an error, you can use fmt.Printf/Sprintf to get more context
	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
