package orm

import (
	"github.com/iov-one/spades/errors"
)

// Orm reserves 100~109 error codes

// ErrInvalidIndex is returned when an index specified is invalid
var ErrInvalidIndex = errors.Register(100, "invalid index")

// ErrUniqueConstraint is returned when a unique index already holds a
// different key for the indexed value.
var ErrUniqueConstraint = errors.Register(101, "unique constraint violation")
