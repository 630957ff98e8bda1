package app

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/crypto"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/x/sigs"
)

// StdTx is the transaction format accepted by the ledger: one message and
// the signatures authorizing it.
type StdTx struct {
	Msg        spades.Msg           `json:"msg"`
	Signatures []*sigs.StdSignature `json:"signatures"`
}

var _ spades.Tx = (*StdTx)(nil)
var _ sigs.SignedTx = (*StdTx)(nil)

// NewStdTx returns an unsigned transaction carrying given message.
func NewStdTx(msg spades.Msg) *StdTx {
	return &StdTx{Msg: msg}
}

// GetMsg returns the carried message.
func (tx *StdTx) GetMsg() (spades.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "message")
	}
	return tx.Msg, nil
}

// GetSignatures returns all signatures attached so far.
func (tx *StdTx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the serialized transaction without signatures, so
// that signers do not depend on each other.
func (tx *StdTx) GetSignBytes() ([]byte, error) {
	return spades.MarshalBinary(&StdTx{Msg: tx.Msg})
}

// Sign appends a signature of given signer with given sequence.
func (tx *StdTx) Sign(signer crypto.Signer, chainID string, seq int64) error {
	sig, err := sigs.SignTx(signer, tx, chainID, seq)
	if err != nil {
		return errors.Wrap(err, "sign")
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

func (tx *StdTx) Marshal() ([]byte, error) {
	return spades.MarshalBinary(tx)
}

func (tx *StdTx) Unmarshal(raw []byte) error {
	return spades.UnmarshalBinary(raw, tx)
}

// TxDecoder creates a StdTx and unmarshals bytes into it
func TxDecoder(raw []byte) (spades.Tx, error) {
	var tx StdTx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return &tx, nil
}
