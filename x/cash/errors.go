package cash

import (
	"github.com/iov-one/spades/errors"
)

// x/cash reserves 30 ~ 39.
var (
	// ErrInsufficientFunds is returned when the source balance is lower
	// than the requested amount.
	ErrInsufficientFunds = errors.Register(30, "insufficient funds")
	// ErrRejected is returned when a receiver refused an incoming transfer.
	ErrRejected = errors.Register(31, "transfer rejected by receiver")
)
