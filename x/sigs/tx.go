package sigs

import (
	"github.com/iov-one/spades/crypto"
	"github.com/iov-one/spades/errors"
)

// SignedTx is a transaction the Decorator can authenticate.
type SignedTx interface {
	// GetSignBytes returns the encoded transaction without its
	// signatures.
	GetSignBytes() ([]byte, error)

	GetSignatures() []*StdSignature
}

// StdSignature signs the sign bytes of a transaction, see BuildSignBytes.
type StdSignature struct {
	Pubkey    *crypto.PublicKey `json:"pubkey"`
	Signature *crypto.Signature `json:"signature"`
	Sequence  int64             `json:"sequence"`
}

// Validate checks that the signature is complete. It does not verify it.
func (s *StdSignature) Validate() error {
	switch {
	case s.Sequence < 0:
		return errors.Wrapf(ErrInvalidSequence, "sequence %d", s.Sequence)
	case s.Pubkey == nil:
		return errors.Wrap(errors.ErrUnauthorized, "no public key")
	case s.Signature == nil || len(s.Signature.Data) == 0:
		return errors.Wrap(errors.ErrUnauthorized, "no signature")
	}
	if err := s.Pubkey.Validate(); err != nil {
		return errors.Wrapf(errors.ErrUnauthorized, "public key: %s", err)
	}
	return nil
}
