package sigs

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// NextSequence returns the sequence the next signature of signer must
// carry, zero for a signer that never signed. Clients call it before
// SignTx:
//
//	seq, err := sigs.NextSequence(db, key.PublicKey().Address())
func NextSequence(db spades.ReadOnlyKVStore, signer spades.Address) (int64, error) {
	if err := signer.Validate(); err != nil {
		return 0, errors.Wrap(err, "signer")
	}
	obj, err := NewBucket().Get(db, signer)
	if err != nil {
		return 0, err
	}
	if u := AsUser(obj); u != nil {
		return u.Sequence, nil
	}
	return 0, nil
}
