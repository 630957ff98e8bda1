package orm

import (
	"encoding/binary"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// sequenceSize is the length of an encoded sequence value. Encoded values
// sort in the same order as the numbers they hold, so wallet and
// transaction IDs taken from a sequence iterate in creation order.
const sequenceSize = 8

// Sequence is a persistent counter stored under "_s.<bucket>:<name>".
type Sequence struct {
	key []byte
}

// NewSequence returns the counter called name that belongs to bucket.
func NewSequence(bucket, name string) Sequence {
	return Sequence{key: []byte("_s." + bucket + ":" + name)}
}

// NextVal advances the counter and returns the new value encoded.
func (s *Sequence) NextVal(db spades.KVStore) ([]byte, error) {
	n, err := s.next(db)
	if err != nil {
		return nil, err
	}
	return EncodeSequence(n), nil
}

// NextInt advances the counter and returns the new value.
func (s *Sequence) NextInt(db spades.KVStore) (int64, error) {
	return s.next(db)
}

// Latest returns the value handed out last, zero for an unused counter,
// without advancing it.
func (s *Sequence) Latest(db spades.KVStore) (int64, []byte, error) {
	n, err := s.load(db)
	if err != nil {
		return 0, nil, err
	}
	return n, EncodeSequence(n), nil
}

func (s *Sequence) load(db spades.ReadOnlyKVStore) (int64, error) {
	raw, err := db.Get(s.key)
	if err != nil {
		return 0, errors.Wrapf(err, "sequence %s", s.key)
	}
	return DecodeSequence(raw)
}

func (s *Sequence) next(db spades.KVStore) (int64, error) {
	n, err := s.load(db)
	if err != nil {
		return 0, err
	}
	n++
	if err := db.Set(s.key, EncodeSequence(n)); err != nil {
		return 0, errors.Wrapf(err, "sequence %s", s.key)
	}
	return n, nil
}

// DecodeSequence reads an encoded sequence value. Nil reads as zero.
func DecodeSequence(raw []byte) (int64, error) {
	switch len(raw) {
	case 0:
		if raw == nil {
			return 0, nil
		}
		return 0, errors.Wrap(errors.ErrEmpty, "sequence value")
	case sequenceSize:
		return int64(binary.BigEndian.Uint64(raw)), nil
	default:
		return 0, errors.Wrapf(errors.ErrInput, "sequence value of %d bytes", len(raw))
	}
}

// EncodeSequence returns n as a big endian sequence value.
func EncodeSequence(n int64) []byte {
	raw := make([]byte, sequenceSize)
	binary.BigEndian.PutUint64(raw, uint64(n))
	return raw
}
