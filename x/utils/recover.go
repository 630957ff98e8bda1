package utils

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// Recovery returns an ErrPanic error instead of letting a panic of the
// rest of the chain take down the node. The panic is logged with the
// message path.
type Recovery struct{}

var _ spades.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Checker) (res *spades.CheckResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, panicError(ctx, tx, p)
		}
	}()
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Deliverer) (res *spades.DeliverResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, panicError(ctx, tx, p)
		}
	}()
	return next.Deliver(ctx, db, tx)
}

func panicError(ctx spades.Context, tx spades.Tx, p interface{}) error {
	err := errors.Wrapf(errors.ErrPanic, "%v", p)
	spades.GetLogger(ctx).Error("handler panic", "path", spades.GetPath(tx), "err", err)
	return err
}
