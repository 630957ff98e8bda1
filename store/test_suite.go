package store

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/iov-one/spades/spadestest/assert"
)

// StoreConstructor opens an empty store. The returned function releases it.
type StoreConstructor func() (CacheableKVStore, func())

// VerifyStore checks what the ledger relies on from a store: reads through
// cache layers, writing and discarding a layer, and ordered iteration over
// a layer merged with its parent. Every store implementation runs it from
// its own tests.
func VerifyStore(t *testing.T, open StoreConstructor) {
	t.Run("cache layers", func(t *testing.T) { verifyLayers(t, open) })
	t.Run("overwrite and delete", func(t *testing.T) { verifyConflicts(t, open) })
	t.Run("iterate", func(t *testing.T) { verifyIteration(t, open) })
}

func verifyLayers(t *testing.T, open StoreConstructor) {
	base, release := open()
	defer release()

	wallet, balance := []byte("wallet:0001"), []byte("cash:owner")
	assertValue(t, base, wallet, nil)
	assert.Nil(t, base.Set(wallet, []byte("2 of 3")))
	assertValue(t, base, wallet, []byte("2 of 3"))

	// a transaction is visible only in its own layer until written
	tx := base.CacheWrap()
	assert.Nil(t, tx.Set(balance, []byte("100")))
	assertValue(t, tx, wallet, []byte("2 of 3"))
	assertValue(t, tx, balance, []byte("100"))
	assertValue(t, base, balance, nil)
	assert.Nil(t, tx.Write())
	assertValue(t, base, balance, []byte("100"))

	failed := base.CacheWrap()
	assert.Nil(t, failed.Delete(wallet))
	assert.Nil(t, failed.Set(balance, []byte("0")))
	assertValue(t, failed, wallet, nil)
	failed.Discard()
	assertValue(t, base, wallet, []byte("2 of 3"))
	assertValue(t, base, balance, []byte("100"))

	// a nested layer writes into its parent only
	outer := base.CacheWrap()
	inner := outer.CacheWrap()
	assert.Nil(t, inner.Delete(wallet))
	assert.Nil(t, inner.Write())
	assertValue(t, outer, wallet, nil)
	assertValue(t, base, wallet, []byte("2 of 3"))
	assert.Nil(t, outer.Write())
	assertValue(t, base, wallet, nil)
}

func verifyConflicts(t *testing.T, open StoreConstructor) {
	cases := map[string]struct {
		committed []Op
		pending   []Op
	}{
		"overwrite a balance": {
			committed: []Op{SetOp([]byte("cash:a"), []byte("10"))},
			pending:   []Op{SetOp([]byte("cash:a"), []byte("7")), SetOp([]byte("cash:b"), []byte("3"))},
		},
		"delete and recreate a confirmation": {
			committed: []Op{SetOp([]byte("sig:1:a"), []byte("direct")), SetOp([]byte("sig:1:b"), []byte("direct"))},
			pending:   []Op{DelOp([]byte("sig:1:a")), SetOp([]byte("sig:1:a"), []byte("aggregate")), DelOp([]byte("sig:1:b"))},
		},
		"delete a missing key": {
			committed: []Op{SetOp([]byte("wallet:1"), []byte("w"))},
			pending:   []Op{DelOp([]byte("wallet:2"))},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, release := open()
			defer release()

			committed := expectState(nil).apply(t, base, tc.committed...)
			child := base.CacheWrap()
			pending := committed.apply(t, child, tc.pending...)

			committed.verify(t, base)
			pending.verify(t, child)
			assert.Nil(t, child.Write())
			pending.verify(t, base)
		})
	}
}

func verifyIteration(t *testing.T, open StoreConstructor) {
	cases := map[string]struct {
		seed             int64
		committed, child int
	}{
		"only in the layer":  {seed: 1, child: 60},
		"only in the parent": {seed: 2, committed: 60},
		"layer over parent":  {seed: 3, committed: 40, child: 40},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, release := open()
			defer release()

			r := rand.New(rand.NewSource(tc.seed))
			committed := expectState(nil).apply(t, base, randomOps(r, tc.committed)...)
			child := base.CacheWrap()
			pending := committed.apply(t, child, randomOps(r, tc.child)...)

			keys := pending.keys()
			if len(keys) < 4 {
				t.Fatalf("too few keys: %d", len(keys))
			}
			bounds := [][2][]byte{
				{nil, nil},
				{keys[1], nil},
				{nil, keys[len(keys)-2]},
				{keys[1], keys[len(keys)/2]},
				{[]byte("wallet:"), []byte("wallet;")},
			}
			for _, b := range bounds {
				want := pending.between(b[0], b[1])
				iter, err := child.Iterator(b[0], b[1])
				assert.Nil(t, err)
				assertIterates(t, iter, want)

				iter, err = child.ReverseIterator(b[0], b[1])
				assert.Nil(t, err)
				assertIterates(t, iter, reversed(want))
			}
		})
	}
}

// randomOps sets and deletes keys of a small key space, so that layers
// overwrite and delete each other's entries.
func randomOps(r *rand.Rand, n int) []Op {
	prefixes := []string{"cash:", "sig:", "wallet:"}
	ops := make([]Op, n)
	for i := range ops {
		key := []byte(fmt.Sprintf("%s%03d", prefixes[r.Intn(len(prefixes))], r.Intn(40)))
		if r.Intn(4) == 0 {
			ops[i] = DelOp(key)
			continue
		}
		ops[i] = SetOp(key, []byte(fmt.Sprintf("value-%d", r.Int63())))
	}
	return ops
}

// expectState is the content a store must have after a series of
// operations. Deleted keys are kept with a nil value.
type expectState map[string][]byte

// apply runs ops against kv and returns the expected state after them.
func (s expectState) apply(t testing.TB, kv SetDeleter, ops ...Op) expectState {
	t.Helper()
	next := make(expectState, len(s)+len(ops))
	for k, v := range s {
		next[k] = v
	}
	for _, op := range ops {
		assert.Nil(t, op.Apply(kv))
		if key, value, ok := op.IsSetOp(); ok {
			next[string(key)] = value
		} else {
			next[string(op.Key())] = nil
		}
	}
	return next
}

// keys returns the existing keys in ascending order.
func (s expectState) keys() [][]byte {
	var keys [][]byte
	for k, v := range s {
		if v != nil {
			keys = append(keys, []byte(k))
		}
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	return keys
}

// between returns the existing entries within [start, end) in ascending
// order. Nil bounds are open.
func (s expectState) between(start, end []byte) []Model {
	var res []Model
	for _, k := range s.keys() {
		if start != nil && bytes.Compare(k, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(k, end) >= 0 {
			continue
		}
		res = append(res, Pair(k, s[string(k)]))
	}
	return res
}

func (s expectState) verify(t testing.TB, kv ReadOnlyKVStore) {
	t.Helper()
	for k, v := range s {
		assertValue(t, kv, []byte(k), v)
	}
	iter, err := kv.Iterator(nil, nil)
	assert.Nil(t, err)
	assertIterates(t, iter, s.between(nil, nil))
}

func assertValue(t testing.TB, kv ReadOnlyKVStore, key, want []byte) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, want, got)
	has, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, want != nil, has)
}

func assertIterates(t testing.TB, iter Iterator, want []Model) {
	t.Helper()
	defer iter.Close()
	for i, m := range want {
		if !iter.Valid() {
			t.Fatalf("iterator ended after %d of %d entries", i, len(want))
		}
		if !bytes.Equal(m.Key, iter.Key()) {
			t.Fatalf("entry %d: want key %q, got %q", i, m.Key, iter.Key())
		}
		assert.Equal(t, m.Value, iter.Value())
		assert.Nil(t, iter.Next())
	}
	if iter.Valid() {
		t.Fatalf("unexpected key %q after %d entries", iter.Key(), len(want))
	}
}

func reversed(models []Model) []Model {
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}
