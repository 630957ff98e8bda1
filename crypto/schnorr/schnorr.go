package schnorr

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec/v2"
	bip340 "github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/iov-one/spades/errors"
)

const (
	// PublicKeySize is the length of a compressed public key.
	PublicKeySize = 33
	// PrivateKeySize is the length of a serialized private key.
	PrivateKeySize = 32
	// SignatureSize is the length of both single and aggregate signatures.
	SignatureSize = bip340.SignatureSize
	// DigestSize is the length of a message signed by an aggregate key.
	DigestSize = sha256.Size
)

// Sign returns the signature of the sha256 hash of msg.
func Sign(priv *btcec.PrivateKey, msg []byte) ([]byte, error) {
	hash := sha256.Sum256(msg)
	sig, err := bip340.Sign(priv, hash[:])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "sign: %s", err)
	}
	return sig.Serialize(), nil
}

// Verify returns true if sig is a valid signature of msg created by the
// owner of the compressed public key pub.
func Verify(pub []byte, msg []byte, sig []byte) bool {
	key, err := ParsePublicKey(pub)
	if err != nil {
		return false
	}
	s, err := bip340.ParseSignature(sig)
	if err != nil {
		return false
	}
	hash := sha256.Sum256(msg)
	return s.Verify(hash[:], key)
}

// ParsePublicKey loads a compressed secp256k1 public key.
func ParsePublicKey(raw []byte) (*btcec.PublicKey, error) {
	if len(raw) != PublicKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "public key must be %d bytes, got %d", PublicKeySize, len(raw))
	}
	key, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "public key: %s", err)
	}
	return key, nil
}

// GeneratePrivateKey returns a new random private key.
func GeneratePrivateKey() (*btcec.PrivateKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "generate key: %s", err)
	}
	return priv, nil
}

// PrivateKeyFromBytes loads a serialized private key. The scalar must be
// within the curve order and not zero.
func PrivateKeyFromBytes(raw []byte) (*btcec.PrivateKey, error) {
	if len(raw) != PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "private key must be %d bytes, got %d", PrivateKeySize, len(raw))
	}
	var k btcec.ModNScalar
	if overflow := k.SetByteSlice(raw); overflow || k.IsZero() {
		return nil, errors.Wrap(errors.ErrInput, "private key out of range")
	}
	return btcec.PrivKeyFromScalar(&k), nil
}

// PrivateKeyFromSeed derives a private key from the given seed. The same
// seed always produces the same key.
func PrivateKeyFromSeed(seed []byte) *btcec.PrivateKey {
	var counter [4]byte
	for i := uint32(0); ; i++ {
		binary.BigEndian.PutUint32(counter[:], i)
		h := sha256.Sum256(append(append([]byte(nil), seed...), counter[:]...))
		if priv, err := PrivateKeyFromBytes(h[:]); err == nil {
			return priv
		}
	}
}
