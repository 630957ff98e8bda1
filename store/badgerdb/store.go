package badgerdb

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"os"
	"sync"

	"github.com/dgraph-io/badger"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/store"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	dataPrefix = []byte("d/")
	// first key after every data key
	dataEnd    = []byte("d0")
	versionKey = []byte("m/version")
	hashKey    = []byte("m/hash")
)

// CommitStore keeps committed state in badger. Changes are collected in an
// in-memory working layer and land on disk only on Commit, in a single
// badger transaction together with the new version information.
type CommitStore struct {
	mu      sync.Mutex
	db      *badger.DB
	logger  log.Logger
	working store.BTreeCacheWrap
	pending *store.NonAtomicBatch
	version int64
	hash    []byte
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore opens (or creates) a badger database in the given
// directory and loads its latest version.
func NewCommitStore(dir string, logger log.Logger) (*CommitStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "create %q: %s", dir, err)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open badger: %s", err)
	}

	s := &CommitStore{
		db:     db,
		logger: logger,
	}
	s.reset()
	if err := s.LoadLatestVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *CommitStore) reset() {
	// The working layer never writes by itself, its operations are
	// collected and applied by Commit.
	s.pending = store.NewNonAtomicBatch(store.EmptyKVStore{})
	s.working = store.NewBTreeCacheWrap(reader{db: s.db}, s.pending, nil)
}

// Get returns the value at last committed state.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	return reader{db: s.db}.Get(key)
}

// CacheWrap returns a cache on top of the working state. Writing it makes
// the changes part of the next Commit.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	return s.working.CacheWrap()
}

// Commit persists all pending changes as the next version. The version hash
// chains the previous hash with every applied operation.
func (s *CommitStore) Commit() (store.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops := s.pending.ShowOps()
	version := s.version + 1
	hash := chainHash(s.hash, version, ops)

	err := s.db.Update(func(txn *badger.Txn) error {
		w := txnWriter{txn: txn}
		for _, op := range ops {
			if err := op.Apply(w); err != nil {
				return err
			}
		}
		if err := txn.Set(versionKey, encodeVersion(version)); err != nil {
			return err
		}
		return txn.Set(hashKey, hash)
	})
	if err != nil {
		return store.CommitID{}, errors.Wrapf(errors.ErrDatabase, "commit version %d: %s", version, err)
	}

	s.logger.Debug("committed", "version", version, "ops", len(ops))
	s.working.Discard()
	s.version = version
	s.hash = hash
	return s.latest(), nil
}

// LoadLatestVersion reads the version information of the last commit and
// drops all uncommitted changes.
func (s *CommitStore) LoadLatestVersion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		version int64
		hash    []byte
	)
	err := s.db.View(func(txn *badger.Txn) error {
		raw, err := getValue(txn, versionKey)
		if err != nil || raw == nil {
			return err
		}
		if len(raw) != 8 {
			return errors.Wrapf(errors.ErrDatabase, "invalid version length %d", len(raw))
		}
		version = int64(binary.BigEndian.Uint64(raw))
		hash, err = getValue(txn, hashKey)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "load version")
	}
	s.working.Discard()
	s.version = version
	s.hash = hash
	return nil
}

// LatestVersion returns info on the latest version saved to disk.
func (s *CommitStore) LatestVersion() (store.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest(), nil
}

func (s *CommitStore) latest() store.CommitID {
	return store.CommitID{
		Version: s.version,
		Hash:    append([]byte(nil), s.hash...),
	}
}

// RunGC reclaims value log space if at least the given ratio of a file can
// be discarded.
func (s *CommitStore) RunGC(discardRatio float64) error {
	err := s.db.RunValueLogGC(discardRatio)
	if err == badger.ErrNoRewrite {
		return nil
	}
	return err
}

// Close releases the database.
func (s *CommitStore) Close() error {
	return s.db.Close()
}

// chainHash returns sha256(prev ‖ version ‖ ops) where each operation is
// encoded as kind byte followed by length prefixed key and value.
func chainHash(prev []byte, version int64, ops []store.Op) []byte {
	h := sha256.New()
	h.Write(prev)
	h.Write(encodeVersion(version))
	var size [4]byte
	for _, op := range ops {
		key, value, isSet := op.IsSetOp()
		if isSet {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{2})
			value = nil
		}
		binary.BigEndian.PutUint32(size[:], uint32(len(key)))
		h.Write(size[:])
		h.Write(key)
		binary.BigEndian.PutUint32(size[:], uint32(len(value)))
		h.Write(size[:])
		h.Write(value)
	}
	return h.Sum(nil)
}

func encodeVersion(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func dataKey(key []byte) []byte {
	return append(append([]byte{}, dataPrefix...), key...)
}

func getValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	switch {
	case err == badger.ErrKeyNotFound:
		return nil, nil
	case err != nil:
		return nil, errors.Wrapf(errors.ErrDatabase, "get: %s", err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "read value: %s", err)
	}
	return val, nil
}

// txnWriter applies store operations to the data section of a transaction.
type txnWriter struct {
	txn *badger.Txn
}

func (w txnWriter) Set(key, value []byte) error {
	return w.txn.Set(dataKey(key), value)
}

func (w txnWriter) Delete(key []byte) error {
	return w.txn.Delete(dataKey(key))
}

// reader gives read access to the committed data.
type reader struct {
	db *badger.DB
}

var _ store.ReadOnlyKVStore = reader{}

func (r reader) Get(key []byte) ([]byte, error) {
	var val []byte
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		val, err = getValue(txn, dataKey(key))
		return err
	})
	return val, err
}

func (r reader) Has(key []byte) (bool, error) {
	var found bool
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(dataKey(key))
		switch {
		case err == nil:
			found = true
		case err != badger.ErrKeyNotFound:
			return errors.Wrapf(errors.ErrDatabase, "has: %s", err)
		}
		return nil
	})
	return found, err
}

// Iterator returns all committed pairs with start <= key < end in
// ascending order.
func (r reader) Iterator(start, end []byte) (store.Iterator, error) {
	var res []store.Model
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := dataPrefix
		if start != nil {
			seek = dataKey(start)
		}
		stop := dataEnd
		if end != nil {
			stop = dataKey(end)
		}
		for it.Seek(seek); it.Valid(); it.Next() {
			item := it.Item()
			k := item.Key()
			if bytes.Compare(k, stop) >= 0 {
				break
			}
			m, err := readModel(item)
			if err != nil {
				return err
			}
			res = append(res, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store.NewSliceIterator(res), nil
}

// ReverseIterator returns all committed pairs with start <= key < end in
// descending order.
func (r reader) ReverseIterator(start, end []byte) (store.Iterator, error) {
	var res []store.Model
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// reverse seek lands on the largest key <= seek
		seek := dataEnd
		if end != nil {
			seek = dataKey(end)
		}
		floor := dataPrefix
		if start != nil {
			floor = dataKey(start)
		}
		for it.Seek(seek); it.Valid(); it.Next() {
			item := it.Item()
			k := item.Key()
			if end != nil && bytes.Equal(k, seek) {
				continue
			}
			if bytes.Compare(k, floor) < 0 || !bytes.HasPrefix(k, dataPrefix) {
				break
			}
			m, err := readModel(item)
			if err != nil {
				return err
			}
			res = append(res, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store.NewSliceIterator(res), nil
}

func readModel(item *badger.Item) (store.Model, error) {
	val, err := item.ValueCopy(nil)
	if err != nil {
		return store.Model{}, errors.Wrapf(errors.ErrDatabase, "read value: %s", err)
	}
	key := item.KeyCopy(nil)
	return store.Pair(key[len(dataPrefix):], val), nil
}
