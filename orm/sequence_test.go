package orm

import (
	"bytes"
	"testing"

	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/spadestest/assert"
	"github.com/iov-one/spades/store"
)

func TestSequence(t *testing.T) {
	cases := map[string]struct {
		bucket     string
		name       string
		init       int64
		increments int64
	}{
		"fresh sequence":       {bucket: "cnts", name: "id", increments: 22},
		"same bucket new name": {bucket: "cnts", name: "other", increments: 11},
		"continue existing":    {bucket: "cnts", name: "id", init: 22, increments: 18},
		"other bucket":         {bucket: "wallets", name: "id", increments: 77},
	}

	db := store.MemStore()
	for _, name := range []string{"fresh sequence", "same bucket new name", "continue existing", "other bucket"} {
		tc := cases[name]
		t.Run(name, func(t *testing.T) {
			s := NewSequence(tc.bucket, tc.name)
			_, orig, err := s.Latest(db)
			assert.Nil(t, err)

			var val int64
			for i := int64(0); i < tc.increments; i++ {
				val, err = s.NextInt(db)
				assert.Nil(t, err)
			}
			assert.Equal(t, tc.init+tc.increments, val)

			// raw bytes sort in the same order as the values
			_, last, err := s.Latest(db)
			assert.Nil(t, err)
			assert.Equal(t, 1, bytes.Compare(last, orig))
		})
	}
}

func TestSequenceKeyLayout(t *testing.T) {
	db := store.MemStore()
	s := NewSequence("wallet", "id")
	val, err := s.NextVal(db)
	assert.Nil(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, val)

	raw, err := db.Get([]byte("_s.wallet:id"))
	assert.Nil(t, err)
	assert.Equal(t, val, raw)
}

func TestDecodeSequenceRejectsGarbage(t *testing.T) {
	_, err := DecodeSequence([]byte{1, 2, 3})
	assert.IsErr(t, errors.ErrInput, err)

	v, err := DecodeSequence(nil)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), v)
}
