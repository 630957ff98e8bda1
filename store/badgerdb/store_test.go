package badgerdb

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/spades/spadestest/assert"
	"github.com/iov-one/spades/store"
	"github.com/stretchr/testify/require"
)

func openStore(t testing.TB) (*CommitStore, string, func()) {
	dir, err := ioutil.TempDir("", "spades-badger")
	require.NoError(t, err)
	s, err := NewCommitStore(dir, nil)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("cannot open store: %+v", err)
	}
	return s, dir, func() {
		s.Close()
		os.RemoveAll(dir)
	}
}

func makeBase() (store.CacheableKVStore, func()) {
	dir, err := ioutil.TempDir("", "spades-badger")
	if err != nil {
		panic(err)
	}
	s, err := NewCommitStore(dir, nil)
	if err != nil {
		panic(err)
	}
	return s.working, func() {
		s.Close()
		os.RemoveAll(dir)
	}
}

func TestStoreBehaviour(t *testing.T) {
	store.VerifyStore(t, makeBase)
}

func TestCommitAndReload(t *testing.T) {
	s, dir, cleanup := openStore(t)
	defer cleanup()

	cache := s.CacheWrap()
	require.NoError(t, cache.Set([]byte("alice"), []byte("100")))
	require.NoError(t, cache.Set([]byte("bob"), []byte("50")))
	require.NoError(t, cache.Write())

	// not visible before commit
	got, err := s.Get([]byte("alice"))
	require.NoError(t, err)
	require.Nil(t, got)

	first, err := s.Commit()
	require.NoError(t, err)
	require.Equal(t, int64(1), first.Version)
	require.Len(t, first.Hash, 32)

	cache = s.CacheWrap()
	require.NoError(t, cache.Delete([]byte("alice")))
	require.NoError(t, cache.Write())
	second, err := s.Commit()
	require.NoError(t, err)
	require.Equal(t, int64(2), second.Version)
	require.NotEqual(t, first.Hash, second.Hash)

	require.NoError(t, s.Close())
	reopened, err := NewCommitStore(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	latest, err := reopened.LatestVersion()
	require.NoError(t, err)
	require.Equal(t, second, latest)

	got, err = reopened.Get([]byte("alice"))
	require.NoError(t, err)
	require.Nil(t, got)
	got, err = reopened.Get([]byte("bob"))
	require.NoError(t, err)
	require.Equal(t, []byte("50"), got)
}

func TestCommittedIteration(t *testing.T) {
	s, _, cleanup := openStore(t)
	defer cleanup()

	cache := s.CacheWrap()
	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, cache.Set([]byte(k), []byte("v"+k)))
	}
	require.NoError(t, cache.Write())
	_, err := s.Commit()
	require.NoError(t, err)

	r := reader{db: s.db}
	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []string
	}{
		"all ascending":         {want: []string{"a", "b", "c", "d"}},
		"all descending":        {reverse: true, want: []string{"d", "c", "b", "a"}},
		"bounded ascending":     {start: []byte("b"), end: []byte("d"), want: []string{"b", "c"}},
		"bounded descending":    {start: []byte("b"), end: []byte("d"), reverse: true, want: []string{"c", "b"}},
		"open end descending":   {start: []byte("c"), reverse: true, want: []string{"d", "c"}},
		"open start ascending":  {end: []byte("b"), want: []string{"a"}},
		"end between keys desc": {end: []byte("bb"), reverse: true, want: []string{"b", "a"}},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var (
				it  store.Iterator
				err error
			)
			if tc.reverse {
				it, err = r.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = r.Iterator(tc.start, tc.end)
			}
			require.NoError(t, err)
			defer it.Close()

			var keys []string
			for ; it.Valid(); assert.Nil(t, it.Next()) {
				keys = append(keys, string(it.Key()))
				require.Equal(t, "v"+string(it.Key()), string(it.Value()))
			}
			require.Equal(t, tc.want, keys)
		})
	}
}

func TestChainHashDependsOnHistory(t *testing.T) {
	ops := []store.Op{store.SetOp([]byte("k"), []byte("v"))}
	a := chainHash(nil, 1, ops)
	b := chainHash([]byte("other"), 1, ops)
	c := chainHash(nil, 2, ops)
	d := chainHash(nil, 1, []store.Op{store.DelOp([]byte("k"))})
	require.NotEqual(t, a, b)
	require.NotEqual(t, a, c)
	require.NotEqual(t, a, d)
	require.Equal(t, a, chainHash(nil, 1, ops))
}
