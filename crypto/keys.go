package crypto

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/crypto/schnorr"
	"github.com/iov-one/spades/errors"
	"golang.org/x/crypto/ed25519"
)

// ExtensionName is used for the Conditions we get from signatures.
const ExtensionName = "sigs"

// KeyType names the signature algorithm of a key.
type KeyType int32

const (
	KeyTypeUnknown KeyType = iota
	KeyTypeEd25519
	// KeyTypeSecp256k1 keys produce Schnorr signatures and can take part
	// in aggregate signatures.
	KeyTypeSecp256k1
)

func (t KeyType) String() string {
	switch t {
	case KeyTypeEd25519:
		return "ed25519"
	case KeyTypeSecp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("unknown(%d)", int32(t))
	}
}

// ParseKeyType is the inverse of KeyType.String.
func ParseKeyType(s string) (KeyType, error) {
	switch s {
	case "ed25519":
		return KeyTypeEd25519, nil
	case "secp256k1":
		return KeyTypeSecp256k1, nil
	default:
		return KeyTypeUnknown, errors.Wrapf(errors.ErrType, "unknown key type %q", s)
	}
}

// PubKey represents a crypto public key we use.
type PubKey interface {
	Verify(message []byte, sig *Signature) bool
	Condition() spades.Condition
}

// Signer is the functionality we use from a private key.
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

// PublicKey is a serializable public key of any supported type.
type PublicKey struct {
	Type KeyType
	Data []byte
}

var _ PubKey = (*PublicKey)(nil)

// Verify verifies the signature was created with this message and public
// key.
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	if p == nil || sig == nil || sig.Type != p.Type {
		return false
	}
	switch p.Type {
	case KeyTypeEd25519:
		if len(p.Data) != ed25519.PublicKeySize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(p.Data), message, sig.Data)
	case KeyTypeSecp256k1:
		return schnorr.Verify(p.Data, message, sig.Data)
	default:
		return false
	}
}

// Condition encodes the public key into a condition. For secp256k1 keys
// this is also the identity used to match aggregate signature participants
// with wallet owners.
func (p *PublicKey) Condition() spades.Condition {
	if p == nil || p.Type == KeyTypeUnknown {
		return nil
	}
	return spades.NewCondition(ExtensionName, p.Type.String(), p.Data)
}

// Address returns the address of the key condition.
func (p *PublicKey) Address() spades.Address {
	return p.Condition().Address()
}

// Validate checks that the key data matches the declared type.
func (p *PublicKey) Validate() error {
	if p == nil {
		return errors.Wrap(errors.ErrEmpty, "public key")
	}
	switch p.Type {
	case KeyTypeEd25519:
		if len(p.Data) != ed25519.PublicKeySize {
			return errors.Wrapf(errors.ErrInput, "ed25519 key must be %d bytes", ed25519.PublicKeySize)
		}
	case KeyTypeSecp256k1:
		if _, err := schnorr.ParsePublicKey(p.Data); err != nil {
			return err
		}
	default:
		return errors.Wrapf(errors.ErrType, "key type %s", p.Type)
	}
	return nil
}

// String returns "<type>:<hex>".
func (p PublicKey) String() string {
	return fmt.Sprintf("%s:%X", p.Type, p.Data)
}

func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PublicKey) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	chunks := strings.SplitN(s, ":", 2)
	if len(chunks) != 2 {
		return errors.Wrap(errors.ErrInput, "public key must be <type>:<hex>")
	}
	t, err := ParseKeyType(chunks[0])
	if err != nil {
		return err
	}
	data, err := hex.DecodeString(chunks[1])
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "public key data: %s", err)
	}
	*p = PublicKey{Type: t, Data: data}
	return p.Validate()
}

// Signature is a serializable signature of any supported type.
type Signature struct {
	Type KeyType
	Data []byte
}

// PrivateKey is a serializable private key of any supported type.
type PrivateKey struct {
	Type KeyType
	Data []byte
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns a matching signature for this private key.
func (p *PrivateKey) Sign(message []byte) (*Signature, error) {
	switch p.Type {
	case KeyTypeEd25519:
		if len(p.Data) != ed25519.PrivateKeySize {
			return nil, errors.Wrap(errors.ErrInput, "malformed ed25519 key")
		}
		return &Signature{Type: p.Type, Data: ed25519.Sign(ed25519.PrivateKey(p.Data), message)}, nil
	case KeyTypeSecp256k1:
		priv, err := schnorr.PrivateKeyFromBytes(p.Data)
		if err != nil {
			return nil, err
		}
		sig, err := schnorr.Sign(priv, message)
		if err != nil {
			return nil, err
		}
		return &Signature{Type: p.Type, Data: sig}, nil
	default:
		return nil, errors.Wrapf(errors.ErrType, "key type %s", p.Type)
	}
}

// PublicKey returns the corresponding PublicKey. It returns nil for a
// malformed key.
func (p *PrivateKey) PublicKey() *PublicKey {
	switch p.Type {
	case KeyTypeEd25519:
		if len(p.Data) != ed25519.PrivateKeySize {
			return nil
		}
		pub := ed25519.PrivateKey(p.Data).Public().(ed25519.PublicKey)
		return &PublicKey{Type: p.Type, Data: pub}
	case KeyTypeSecp256k1:
		priv, err := schnorr.PrivateKeyFromBytes(p.Data)
		if err != nil {
			return nil
		}
		return &PublicKey{Type: p.Type, Data: priv.PubKey().SerializeCompressed()}
	default:
		return nil
	}
}

// GenPrivKeyEd25519 returns a random new private key.
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Type: KeyTypeEd25519, Data: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{Type: KeyTypeEd25519, Data: ed25519.NewKeyFromSeed(seed)}
}

// GenPrivKeySecp256k1 returns a random new secp256k1 private key.
func GenPrivKeySecp256k1() *PrivateKey {
	priv, err := schnorr.GeneratePrivateKey()
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Type: KeyTypeSecp256k1, Data: priv.Serialize()}
}

// PrivKeySecp256k1FromSeed deterministically derives a secp256k1 private
// key from given seed.
func PrivKeySecp256k1FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{Type: KeyTypeSecp256k1, Data: schnorr.PrivateKeyFromSeed(seed).Serialize()}
}

// Secp256k1Condition returns the condition of a compressed secp256k1 public
// key. It is equal to the condition of the matching PublicKey.
func Secp256k1Condition(compressed []byte) spades.Condition {
	return spades.NewCondition(ExtensionName, KeyTypeSecp256k1.String(), compressed)
}
