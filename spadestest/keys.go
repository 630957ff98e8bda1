package spadestest

import (
	"encoding/binary"
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/crypto"
	"github.com/iov-one/spades/store/iavl"
)

// NewKey returns a new, random secp256k1 key. Such a key can sign host
// transactions and take part in aggregate signatures.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeySecp256k1()
}

// NewCondition returns a condition of a new, random signer.
func NewCondition() spades.Condition {
	return NewKey().PublicKey().Condition()
}

// SequenceID returns the 8 byte big endian encoding of n, the format used
// for all sequence generated keys.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

// CommitKVStore returns a store instance that is using a filesystem backend
// engine to store the data. Use it instead of a memory store when you want
// the exact same storage implementation as the production instance is using.
func CommitKVStore(t testing.TB) (db spades.CommitKVStore, cleanup func()) {
	dbpath, err := ioutil.TempDir("", "spades")
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}

	store, err := iavl.NewCommitStore(dbpath, "db")
	if err != nil {
		os.RemoveAll(dbpath)
		t.Fatalf("cannot create a store: %s", err)
	}
	return store, func() {
		store.Close()
		os.RemoveAll(dbpath)
	}
}
