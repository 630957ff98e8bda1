package app

import (
	"reflect"

	"github.com/iov-one/spades"
)

/*
Decorators is an ordered list of decorators waiting for the handler they
wrap. The first decorator sees a transaction first:

	app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		sigs.NewDecorator(),
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(router)

Nil decorators are skipped, so optional ones can be passed unconditionally.
*/
type Decorators []spades.Decorator

// ChainDecorators starts a list with the given decorators.
func ChainDecorators(ds ...spades.Decorator) Decorators {
	return Decorators(nil).Chain(ds...)
}

// Chain returns a new list with ds appended. The receiver is not modified.
func (d Decorators) Chain(ds ...spades.Decorator) Decorators {
	out := make(Decorators, 0, len(d)+len(ds))
	out = append(out, d...)
	for _, dec := range ds {
		if !isNilDecorator(dec) {
			out = append(out, dec)
		}
	}
	return out
}

func isNilDecorator(dec spades.Decorator) bool {
	if dec == nil {
		return true
	}
	v := reflect.ValueOf(dec)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler returns h wrapped by every decorator of the list.
func (d Decorators) WithHandler(h spades.Handler) spades.Handler {
	for i := len(d) - 1; i >= 0; i-- {
		h = wrapped{dec: d[i], next: h}
	}
	return h
}

// wrapped is a handler that runs dec around next.
type wrapped struct {
	dec  spades.Decorator
	next spades.Handler
}

func (w wrapped) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.CheckResult, error) {
	return w.dec.Check(ctx, db, tx, w.next)
}

func (w wrapped) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.DeliverResult, error) {
	return w.dec.Deliver(ctx, db, tx, w.next)
}
