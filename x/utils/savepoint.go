package utils

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// Savepoint runs the rest of the chain in a cache layer of the store and
// writes the layer only if the handler succeeds. A wallet operation that
// fails after moving funds or recording a confirmation leaves no trace.
//
// The zero value is inactive. Enable it per phase with OnCheck and
// OnDeliver.
type Savepoint struct {
	check, deliver bool
}

var _ spades.Decorator = Savepoint{}

func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a copy that is active when checking transactions.
func (s Savepoint) OnCheck() Savepoint {
	s.check = true
	return s
}

// OnDeliver returns a copy that is active when delivering transactions.
func (s Savepoint) OnDeliver() Savepoint {
	s.deliver = true
	return s
}

func (s Savepoint) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Checker) (*spades.CheckResult, error) {
	layer, ok := cacheLayer(db, s.check)
	if !ok {
		return next.Check(ctx, db, tx)
	}
	res, err := next.Check(ctx, layer, tx)
	if err := settle(layer, err); err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Deliverer) (*spades.DeliverResult, error) {
	layer, ok := cacheLayer(db, s.deliver)
	if !ok {
		return next.Deliver(ctx, db, tx)
	}
	res, err := next.Deliver(ctx, layer, tx)
	if err := settle(layer, err); err != nil {
		return nil, err
	}
	return res, nil
}

// cacheLayer returns a new layer over db when the savepoint is active and
// db supports layers.
func cacheLayer(db spades.KVStore, active bool) (spades.KVCacheWrap, bool) {
	if !active {
		return nil, false
	}
	c, ok := db.(spades.CacheableKVStore)
	if !ok {
		return nil, false
	}
	return c.CacheWrap(), true
}

// settle discards layer after a failed handler and writes it otherwise.
func settle(layer spades.KVCacheWrap, handlerErr error) error {
	if handlerErr != nil {
		layer.Discard()
		return handlerErr
	}
	if err := layer.Write(); err != nil {
		return errors.Wrap(err, "write savepoint")
	}
	return nil
}
