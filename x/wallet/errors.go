package wallet

import (
	"github.com/iov-one/spades/errors"
)

// x/wallet reserves 1100 ~ 1119.
var (
	ErrInvalidConfiguration   = errors.Register(1100, "invalid wallet configuration")
	ErrInsufficientBalance    = errors.Register(1101, "insufficient wallet balance")
	ErrInsufficientSignatures = errors.Register(1102, "insufficient confirmations")
	ErrAlreadyConfirmed       = errors.Register(1103, "already confirmed")
	ErrAlreadyExecuted        = errors.Register(1104, "transaction already executed")
	ErrNotConfirmed           = errors.Register(1105, "not confirmed")
	ErrInvalidSignature       = errors.Register(1106, "invalid aggregate signature")
	ErrTransferFailed         = errors.Register(1107, "transfer failed")
)
