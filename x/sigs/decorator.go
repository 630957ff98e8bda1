/*
Package sigs authenticates transactions by their signatures.

Every signer keeps a sequence that its next signature must carry, so a
signed transaction cannot be replayed. The Decorator verifies the
signatures and makes the signers available to handlers through
Authenticate.
*/
package sigs

import (
	"context"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// Decorator verifies the signatures of a SignedTx before the handler runs.
// Transactions that carry no signatures at all are rejected unless missing
// signatures are allowed. Transactions that are not a SignedTx pass with no
// signers.
type Decorator struct {
	allowUnsigned bool
}

var _ spades.Decorator = Decorator{}

func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs returns a decorator that passes a SignedTx without
// signatures, with an empty list of signers.
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowUnsigned = true
	return d
}

func (d Decorator) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Checker) (*spades.CheckResult, error) {
	ctx, err := d.withSigners(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Check(ctx, db, tx)
}

func (d Decorator) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Deliverer) (*spades.DeliverResult, error) {
	ctx, err := d.withSigners(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, db, tx)
}

func (d Decorator) withSigners(ctx spades.Context, db spades.KVStore, tx spades.Tx) (spades.Context, error) {
	signed, ok := tx.(SignedTx)
	if !ok {
		return ctx, nil
	}
	signers, err := VerifyTxSignatures(db, signed, spades.GetChainID(ctx))
	if err != nil {
		return nil, err
	}
	if len(signers) == 0 && !d.allowUnsigned {
		return nil, errors.Wrap(errors.ErrUnauthorized, "transaction is not signed")
	}
	return context.WithValue(ctx, signersKey, signers), nil
}
