package sigs

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/spadestest"
)

// signedTx is a minimal SignedTx carrying an opaque message.
type signedTx struct {
	spadestest.Tx
	Signatures []*StdSignature
}

var _ SignedTx = (*signedTx)(nil)

func newSignedTx(payload []byte) *signedTx {
	msg := &spadestest.Msg{RoutePath: "test/msg", Serialized: payload}
	return &signedTx{Tx: spadestest.Tx{Msg: msg}}
}

func (tx *signedTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *signedTx) GetSignBytes() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	return msg.Marshal()
}

// sigCheckHandler stores the seen signers on each call
type sigCheckHandler struct {
	Signers []spades.Condition
}

var _ spades.Handler = (*sigCheckHandler)(nil)

func (s *sigCheckHandler) Check(ctx spades.Context, store spades.KVStore, tx spades.Tx) (*spades.CheckResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &spades.CheckResult{}, nil
}

func (s *sigCheckHandler) Deliver(ctx spades.Context, store spades.KVStore, tx spades.Tx) (*spades.DeliverResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &spades.DeliverResult{}, nil
}
