package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/crypto"
	"github.com/iov-one/spades/errors"
)

// SignCodeV1 starts the signed payload of every transaction signature.
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// VerifyTxSignatures verifies every signature of tx and advances the
// sequence of each signer. It returns the conditions of the signers in
// signature order, an empty list for a transaction without signatures.
func VerifyTxSignatures(db spades.KVStore, tx SignedTx, chainID string) ([]spades.Condition, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	sigs := tx.GetSignatures()
	signers := make([]spades.Condition, 0, len(sigs))
	for i, sig := range sigs {
		c, err := VerifySignature(db, sig, payload, chainID)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		signers = append(signers, c)
	}
	return signers, nil
}

// VerifySignature verifies that sig signs payload on the given chain with
// the next sequence of its signer, and stores the advanced sequence.
func VerifySignature(db spades.KVStore, sig *StdSignature, payload []byte, chainID string) (spades.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	digest, err := BuildSignBytes(payload, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}

	b := NewBucket()
	obj, err := b.GetOrCreate(db, sig.Pubkey)
	if err != nil {
		return nil, err
	}
	user := AsUser(obj)
	if !user.Pubkey.Verify(digest, sig.Signature) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "signature of %s", user.Pubkey.Address())
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := b.Save(db, obj); err != nil {
		return nil, err
	}
	return user.Pubkey.Condition(), nil
}

/*
BuildSignBytes returns the digest a signer signs for a transaction.

It is the sha512 hash of

	SignCodeV1 | len(chainID) | chainID | seq           | payload
	4 bytes    | 1 byte       | ascii   | 8 byte BE int | encoded transaction

Binding the chain and the sequence makes a signature useless on another
chain and for a replay of the same transaction.
*/
func BuildSignBytes(payload []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrapf(ErrInvalidSequence, "sequence %d", seq)
	}
	if !spades.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id %q", chainID)
	}

	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], uint64(seq))

	h := sha512.New()
	h.Write(SignCodeV1)
	h.Write([]byte{byte(len(chainID))})
	h.Write([]byte(chainID))
	h.Write(seqBytes[:])
	h.Write(payload)
	return h.Sum(nil), nil
}

// BuildSignBytesTx is BuildSignBytes for the payload of tx.
func BuildSignBytesTx(tx SignedTx, chainID string, seq int64) ([]byte, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	return BuildSignBytes(payload, chainID, seq)
}

// SignTx returns the signature of signer over tx with the given sequence.
// Use NextSequence to learn the sequence the ledger expects.
func SignTx(signer crypto.Signer, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	digest, err := BuildSignBytesTx(tx, chainID, seq)
	if err != nil {
		return nil, err
	}
	raw, err := signer.Sign(digest)
	if err != nil {
		return nil, errors.Wrap(err, "sign")
	}
	return &StdSignature{Pubkey: signer.PublicKey(), Signature: raw, Sequence: seq}, nil
}
