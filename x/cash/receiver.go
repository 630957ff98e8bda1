package cash

import (
	"sync"

	"github.com/iov-one/spades"
)

// Receiver is notified about every transfer into the address it was
// registered for. Returning an error rejects the transfer and rolls back
// the whole operation.
type Receiver interface {
	Receive(ctx spades.Context, db spades.KVStore, from spades.Address, amount int64, payload []byte) error
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(ctx spades.Context, db spades.KVStore, from spades.Address, amount int64, payload []byte) error

func (fn ReceiverFunc) Receive(ctx spades.Context, db spades.KVStore, from spades.Address, amount int64, payload []byte) error {
	return fn(ctx, db, from, amount, payload)
}

// Receivers is a registry of receiver hooks by destination address.
type Receivers struct {
	mu    sync.RWMutex
	hooks map[string]Receiver
}

// NewReceivers returns an empty registry.
func NewReceivers() *Receivers {
	return &Receivers{hooks: make(map[string]Receiver)}
}

// Register sets the receiver for given address, replacing any previous one.
// A nil receiver removes the hook.
func (r *Receivers) Register(addr spades.Address, rc Receiver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rc == nil {
		delete(r.hooks, string(addr))
		return
	}
	r.hooks[string(addr)] = rc
}

// Get returns the receiver of given address or nil.
func (r *Receivers) Get(addr spades.Address) Receiver {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hooks[string(addr)]
}
