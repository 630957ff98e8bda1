package sigs

import (

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/x"
)

type contextKey int

const signersKey contextKey = 0

// Authenticate authenticates the signers of the transaction, as verified
// by the Decorator. Handlers receive it wrapped in x.ChainAuth.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the signature conditions of the current
// transaction. It is empty outside of the Decorator.
func (Authenticate) GetConditions(ctx spades.Context) []spades.Condition {
	signers, _ := ctx.Value(signersKey).([]spades.Condition)
	return signers
}

func (a Authenticate) HasAddress(ctx spades.Context, addr spades.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if c.Address().Equals(addr) {
			return true
		}
	}
	return false
}
