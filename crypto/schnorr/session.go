package schnorr

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr/musig2"
	"github.com/iov-one/spades/errors"
)

// Nonce is the public nonce a signer publishes in the first round.
type Nonce = [musig2.PubNonceSize]byte

// PartialSignature is the share of one signer in an aggregate signature.
type PartialSignature = musig2.PartialSignature

// Signer is one participant of an aggregate signature over a single digest.
// The secret nonce is bound to the signer key, the aggregate key and the
// digest, and is erased after the first Sign call.
type Signer struct {
	priv   *btcec.PrivateKey
	agg    *AggregateKey
	digest [DigestSize]byte
	nonces *musig2.Nonces
}

// NewSigner starts a signing session for the owner of priv.
func NewSigner(priv *btcec.PrivateKey, agg *AggregateKey, digest []byte) (*Signer, error) {
	if len(digest) != DigestSize {
		return nil, errors.Wrapf(errors.ErrInput, "digest must be %d bytes, got %d", DigestSize, len(digest))
	}
	pub := priv.PubKey()
	if !agg.Contains(pub.SerializeCompressed()) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signer is not a member of the aggregate key")
	}
	s := &Signer{priv: priv, agg: agg}
	copy(s.digest[:], digest)

	nonces, err := musig2.GenNonces(
		musig2.WithPublicKey(pub),
		musig2.WithNonceSecretKeyAux(priv),
		musig2.WithNonceCombinedKeyAux(agg.key),
		musig2.WithNonceMessageAux(s.digest),
	)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "nonce: %s", err)
	}
	s.nonces = nonces
	return s, nil
}

// PublicNonce returns the nonce that must be shared with all other signers.
func (s *Signer) PublicNonce() Nonce {
	if s.nonces == nil {
		return Nonce{}
	}
	return s.nonces.PubNonce
}

// Sign creates the partial signature for the combined nonce of all
// signers. A signer can sign only once.
func (s *Signer) Sign(combined Nonce) (*PartialSignature, error) {
	if s.nonces == nil {
		return nil, errors.Wrap(errors.ErrState, "nonce already used")
	}
	secret := s.nonces.SecNonce
	s.nonces = nil
	part, err := musig2.Sign(secret, s.priv, combined, s.agg.keys, s.digest, musig2.WithSortedKeys())
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "partial sign: %s", err)
	}
	return part, nil
}

// CombineNonces returns the combined nonce of all signers.
func CombineNonces(nonces []Nonce) (Nonce, error) {
	if len(nonces) == 0 {
		return Nonce{}, errors.Wrap(errors.ErrEmpty, "no nonces")
	}
	combined, err := musig2.AggregateNonces(nonces)
	if err != nil {
		return Nonce{}, errors.Wrapf(errors.ErrInput, "combine nonces: %s", err)
	}
	return combined, nil
}

// CombinePartialSignatures returns the final signature of a completed
// session.
func CombinePartialSignatures(parts []*PartialSignature) ([]byte, error) {
	if len(parts) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "no partial signatures")
	}
	return musig2.CombineSigs(parts[0].R, parts).Serialize(), nil
}

// SignAggregate runs a complete session in process for all given keys and
// returns the signature together with the aggregate key it verifies
// against.
func SignAggregate(digest []byte, privs ...*btcec.PrivateKey) ([]byte, *AggregateKey, error) {
	pubs := make([][]byte, len(privs))
	for i, p := range privs {
		pubs[i] = p.PubKey().SerializeCompressed()
	}
	agg, err := AggregatePublicKeys(pubs)
	if err != nil {
		return nil, nil, err
	}

	signers := make([]*Signer, len(privs))
	nonces := make([]Nonce, len(privs))
	for i, p := range privs {
		s, err := NewSigner(p, agg, digest)
		if err != nil {
			return nil, nil, err
		}
		signers[i] = s
		nonces[i] = s.PublicNonce()
	}
	combined, err := CombineNonces(nonces)
	if err != nil {
		return nil, nil, err
	}
	parts := make([]*PartialSignature, len(signers))
	for i, s := range signers {
		if parts[i], err = s.Sign(combined); err != nil {
			return nil, nil, err
		}
	}
	sig, err := CombinePartialSignatures(parts)
	if err != nil {
		return nil, nil, err
	}
	if err := VerifyAggregate(agg, digest, sig); err != nil {
		return nil, nil, errors.Wrap(err, "combined signature")
	}
	return sig, agg, nil
}
