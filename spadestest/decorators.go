package spadestest

import "github.com/iov-one/spades"

// Decorator passes every transaction to the next handler and records how
// often it was asked to. A non nil Reject stops the chain at this
// decorator with that error.
type Decorator struct {
	Reject error

	checks, delivers int
}

var _ spades.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Checker) (*spades.CheckResult, error) {
	d.checks++
	if d.Reject != nil {
		return nil, d.Reject
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Deliverer) (*spades.DeliverResult, error) {
	d.delivers++
	if d.Reject != nil {
		return nil, d.Reject
	}
	return next.Deliver(ctx, db, tx)
}

// CallCount is the number of Check and Deliver calls together, rejected
// ones included.
func (d *Decorator) CallCount() int {
	return d.checks + d.delivers
}

// Decorate returns h behind a single decorator, for testing a decorator
// without building a chain.
func Decorate(h spades.Handler, d spades.Decorator) spades.Handler {
	return decorated{Decorator: d, next: h}
}

type decorated struct {
	spades.Decorator
	next spades.Handler
}

func (d decorated) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.CheckResult, error) {
	return d.Decorator.Check(ctx, db, tx, d.next)
}

func (d decorated) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.DeliverResult, error) {
	return d.Decorator.Deliver(ctx, db, tx, d.next)
}
