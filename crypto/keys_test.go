package crypto

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iov-one/spades/spadestest/assert"
)

func TestSigning(t *testing.T) {
	cases := map[string]*PrivateKey{
		"ed25519":   GenPrivKeyEd25519(),
		"secp256k1": GenPrivKeySecp256k1(),
	}

	for name, private := range cases {
		t.Run(name, func(t *testing.T) {
			public := private.PublicKey()
			assert.Nil(t, public.Validate())

			msg := []byte("foobar")
			msg2 := []byte("dingbooms")

			sig, err := private.Sign(msg)
			assert.Nil(t, err)
			sig2, err := private.Sign(msg2)
			assert.Nil(t, err)

			if bytes.Equal(sig.Data, sig2.Data) {
				t.Fatal("different messages produce the same signature")
			}
			if !public.Verify(msg, sig) {
				t.Fatal("cannot verify a message signed with this public key")
			}
			if !public.Verify(msg2, sig2) {
				t.Fatal("cannot verify a message signed with this public key")
			}
			if public.Verify(msg, sig2) {
				t.Fatal("verified message signature of the wrong message")
			}
			if public.Verify(msg, &Signature{}) {
				t.Fatal("verified an empty signature of a message")
			}
			if public.Verify(msg, nil) {
				t.Fatal("verified a nil signature of a message")
			}
		})
	}
}

func TestSignatureTypeMismatch(t *testing.T) {
	ed := GenPrivKeyEd25519()
	secp := GenPrivKeySecp256k1()

	sig, err := ed.Sign([]byte("msg"))
	assert.Nil(t, err)
	if secp.PublicKey().Verify([]byte("msg"), sig) {
		t.Fatal("secp256k1 key accepted an ed25519 signature")
	}
}

func TestKeyConditions(t *testing.T) {
	pub := PrivKeySecp256k1FromSeed([]byte("alice")).PublicKey()
	pub2 := PrivKeySecp256k1FromSeed([]byte("bob")).PublicKey()
	empty := PublicKey{}

	assert.Nil(t, pub.Condition().Validate())
	if bytes.Equal(pub.Condition(), pub2.Condition()) {
		t.Fatal("two different keys have the same condition")
	}
	if !bytes.Equal(pub.Condition(), Secp256k1Condition(pub.Data)) {
		t.Fatal("raw key condition differs from the public key condition")
	}
	assert.Nil(t, pub.Address().Validate())
	if empty.Condition() != nil {
		t.Fatal("empty key must not have a condition")
	}

	ed := PrivKeyEd25519FromSeed(bytes.Repeat([]byte{1}, 32)).PublicKey()
	assert.Equal(t, "sigs/ed25519/", string(ed.Condition()[:13]))
}

func TestPublicKeyJSON(t *testing.T) {
	pub := PrivKeySecp256k1FromSeed([]byte("alice")).PublicKey()
	raw, err := json.Marshal(pub)
	assert.Nil(t, err)

	var got PublicKey
	assert.Nil(t, json.Unmarshal(raw, &got))
	assert.Equal(t, *pub, got)

	if err := json.Unmarshal([]byte(`"rsa:0011"`), &got); err == nil {
		t.Fatal("unknown key type accepted")
	}
	if err := json.Unmarshal([]byte(`"secp256k1:0011"`), &got); err == nil {
		t.Fatal("malformed key accepted")
	}
}
