package spades

// ReadOnlyKVStore reads the ledger state. Keys are prefixed by the bucket
// that owns them, for example "wallet:" or "cash:".
type ReadOnlyKVStore interface {
	// Get returns nil for a missing key.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// Iterator walks the keys within [start, end) in ascending order. A
	// nil bound is open. The range must not be written to while the
	// iterator is open.
	Iterator(start, end []byte) (Iterator, error)

	// ReverseIterator walks the same range in descending order.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter is the write half shared by stores and batches. Callers must
// not modify a key or value after passing it.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is the store handlers receive.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter

	NewBatch() Batch
}

// Batch collects writes and applies them to its store on Write.
type Batch interface {
	SetDeleter
	Write() error
}

/*
Iterator is a cursor over a range of keys. It starts at the first entry:

	it, err := db.Iterator(start, end)
	if err != nil {
		return err
	}
	defer it.Close()
	for ; it.Valid(); err = it.Next() {
		if err != nil {
			return err
		}
		use(it.Key(), it.Value())
	}

Next, Key and Value panic once Valid is false. Returned slices must not be
modified.
*/
type Iterator interface {
	Valid() bool
	Next() error
	Key() []byte
	Value() []byte
	Close()
}

// CacheableKVStore can open a cache layer over itself.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap is a layer of uncommitted writes over a store. Reads see the
// layer first. Write applies the layer to the store below, Discard drops
// it. The ledger opens a layer per block and the savepoint decorator one
// per transaction.
type KVCacheWrap interface {
	CacheableKVStore

	Write() error
	Discard()
}

// CommitKVStore is the persistent store under the ledger. Changes are made
// through cache layers and become a new version on Commit.
type CommitKVStore interface {
	// Get reads the last committed version.
	Get(key []byte) ([]byte, error)

	// CacheWrap returns a layer whose writes are part of the next
	// Commit once written.
	CacheWrap() KVCacheWrap

	Commit() (CommitID, error)

	// LoadLatestVersion opens the last fully committed version. A commit
	// interrupted by a crash is not visible.
	LoadLatestVersion() error

	LatestVersion() (CommitID, error)
}

// CommitID identifies a committed version by its number and its hash.
type CommitID struct {
	Version int64
	Hash    []byte
}
