package sigs

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/crypto"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/orm"
)

// BucketName prefixes the signer records. They are queried under "/auth".
const BucketName = "sigs"

// maxSequenceValue is 2^53 - 1, the greatest integer a javascript client
// holds exactly.
const maxSequenceValue = (1 << 53) - 1

// UserData is the record of a signer: its public key and the sequence its
// next signature must carry. Records are keyed by the signer address.
type UserData struct {
	Pubkey   *crypto.PublicKey `json:"pubkey"`
	Sequence int64             `json:"sequence"`
}

var _ orm.Model = (*UserData)(nil)

// Validate requires a public key once the signer has signed.
func (u *UserData) Validate() error {
	switch {
	case u.Sequence < 0:
		return errors.Field("Sequence", ErrInvalidSequence, "negative")
	case u.Sequence > 0 && u.Pubkey == nil:
		return errors.Field("Sequence", ErrInvalidSequence, "signer without public key")
	}
	return nil
}

func (u *UserData) Marshal() ([]byte, error) {
	return spades.MarshalBinary(u)
}

func (u *UserData) Unmarshal(raw []byte) error {
	return spades.UnmarshalBinary(raw, u)
}

// CheckAndIncrementSequence consumes seq, which must equal the current
// sequence.
func (u *UserData) CheckAndIncrementSequence(seq int64) error {
	if seq != u.Sequence {
		return errors.Wrapf(ErrInvalidSequence, "got %d, expected %d", seq, u.Sequence)
	}
	if u.Sequence >= maxSequenceValue {
		return errors.Wrapf(errors.ErrOverflow, "sequence %d", u.Sequence)
	}
	u.Sequence++
	return nil
}

// AsUser returns the signer record held by obj, nil for a nil object.
func AsUser(obj orm.Object) *UserData {
	if obj == nil {
		return nil
	}
	u, _ := obj.Value().(*UserData)
	return u
}

// NewUser returns a fresh record of the signer with the given key. A nil
// key gives the prototype of the bucket.
func NewUser(pub *crypto.PublicKey) orm.Object {
	var addr spades.Address
	if pub != nil {
		addr = pub.Address()
	}
	return orm.NewRecord(addr, &UserData{Pubkey: pub})
}

// Bucket holds the signer records.
type Bucket struct {
	orm.Bucket
}

func NewBucket() Bucket {
	return Bucket{Bucket: orm.NewBucket(BucketName, NewUser(nil))}
}

// GetOrCreate loads the record of pub, or returns a fresh unsaved one for
// a signer seen for the first time.
func (b Bucket) GetOrCreate(db spades.KVStore, pub *crypto.PublicKey) (orm.Object, error) {
	obj, err := b.Get(db, pub.Address())
	if err != nil {
		return nil, err
	}
	if obj == nil {
		obj = NewUser(pub)
	}
	return obj, nil
}

// RegisterQuery exposes the signer records at "/auth".
func RegisterQuery(qr spades.QueryRouter) {
	NewBucket().Register("auth", qr)
}
