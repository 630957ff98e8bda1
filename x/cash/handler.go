package cash

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r spades.Registry, auth x.Authenticator, control Controller) {
	r.Handle(&SendMsg{}, NewSendHandler(auth, control))
}

// SendHandler will handle sending coins
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ spades.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check just verifies it is properly formed. Funds are not checked.
func (h SendHandler) Check(ctx spades.Context, store spades.KVStore, tx spades.Tx) (*spades.CheckResult, error) {
	if _, err := h.validate(ctx, store, tx); err != nil {
		return nil, err
	}
	return &spades.CheckResult{}, nil
}

// Deliver moves the tokens from sender to receiver if
// all preconditions are met
func (h SendHandler) Deliver(ctx spades.Context, store spades.KVStore, tx spades.Tx) (*spades.DeliverResult, error) {
	msg, err := h.validate(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(ctx, store, msg.Source, msg.Destination, msg.Amount, []byte(msg.Memo)); err != nil {
		return nil, err
	}
	return &spades.DeliverResult{
		Events: []spades.Event{TransferEvent{
			Source:      msg.Source,
			Destination: msg.Destination,
			Amount:      msg.Amount,
		}},
	}, nil
}

func (h SendHandler) validate(ctx spades.Context, store spades.KVStore, tx spades.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := spades.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.ErrUnauthorized
	}
	return &msg, nil
}
