package schnorr

import (
	"bytes"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	bip340 "github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcec/v2/schnorr/musig2"
	"github.com/iov-one/spades/errors"
)

// AggregateKey is the MuSig2 combination of a set of public keys. The order
// in which the keys are given does not change the result.
type AggregateKey struct {
	key  *btcec.PublicKey
	keys []*btcec.PublicKey
}

// AggregatePublicKeys combines compressed public keys into one key. Every
// key must be unique.
func AggregatePublicKeys(raw [][]byte) (*AggregateKey, error) {
	if len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "no public keys")
	}
	sorted := make([][]byte, len(raw))
	copy(sorted, raw)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i], sorted[j]) < 0 })

	keys := make([]*btcec.PublicKey, len(sorted))
	for i, r := range sorted {
		if i > 0 && bytes.Equal(r, sorted[i-1]) {
			return nil, errors.Wrapf(errors.ErrDuplicate, "public key %X", r)
		}
		key, err := ParsePublicKey(r)
		if err != nil {
			return nil, errors.Wrapf(err, "key %d", i)
		}
		keys[i] = key
	}

	agg, _, _, err := musig2.AggregateKeys(keys, false)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "aggregate keys: %s", err)
	}
	return &AggregateKey{key: agg.FinalKey, keys: keys}, nil
}

// Bytes returns the compressed combined key.
func (a *AggregateKey) Bytes() []byte {
	return a.key.SerializeCompressed()
}

// Keys returns the compressed member keys in ascending order.
func (a *AggregateKey) Keys() [][]byte {
	res := make([][]byte, len(a.keys))
	for i, k := range a.keys {
		res[i] = k.SerializeCompressed()
	}
	return res
}

// Contains returns true if the compressed key pub is a member.
func (a *AggregateKey) Contains(pub []byte) bool {
	for _, k := range a.keys {
		if bytes.Equal(k.SerializeCompressed(), pub) {
			return true
		}
	}
	return false
}

// VerifyAggregate checks that sig is a signature of the 32 byte digest by
// the aggregate key.
func VerifyAggregate(agg *AggregateKey, digest []byte, sig []byte) error {
	if len(digest) != DigestSize {
		return errors.Wrapf(errors.ErrInput, "digest must be %d bytes, got %d", DigestSize, len(digest))
	}
	s, err := bip340.ParseSignature(sig)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "signature: %s", err)
	}
	if !s.Verify(digest, agg.key) {
		return errors.Wrap(errors.ErrUnauthorized, "aggregate signature mismatch")
	}
	return nil
}
