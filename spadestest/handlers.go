package spadestest

import "github.com/iov-one/spades"

// Handler is a mock implementation of the spades.Handler interface.
//
// When WriteKey is set, Deliver writes WriteKey/WriteValue to the store
// before returning, which makes it usable to test rollback behaviour.
type Handler struct {
	checkCall   int
	CheckResult spades.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult spades.DeliverResult
	DeliverErr    error

	WriteKey   []byte
	WriteValue []byte
}

var _ spades.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.DeliverResult, error) {
	h.deliverCall++
	if h.WriteKey != nil {
		if err := db.Set(h.WriteKey, h.WriteValue); err != nil {
			return nil, err
		}
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// PanicHandler panics with Value on every call.
type PanicHandler struct {
	Value interface{}
}

var _ spades.Handler = PanicHandler{}

func (p PanicHandler) Check(spades.Context, spades.KVStore, spades.Tx) (*spades.CheckResult, error) {
	panic(p.Value)
}

func (p PanicHandler) Deliver(spades.Context, spades.KVStore, spades.Tx) (*spades.DeliverResult, error) {
	panic(p.Value)
}
