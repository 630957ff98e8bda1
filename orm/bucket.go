/*
Package orm stores typed models in prefixed sections of the key value store.

A Bucket owns every key starting with "<name>:" and holds a single model
type, for example the wallets or the pending transactions. Secondary indexes
live in their own buckets and are updated on every Save and Delete, so a
wallet can be found by any of its owners. Sequences hand out increasing IDs.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// SeqID names the sequence that model buckets take their primary keys from.
const SeqID = "id"

var validBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket reads and writes the objects of one model type. Buckets are
// values: the With methods return a modified copy, so a bucket is usually
// built once in a package variable constructor.
type Bucket struct {
	name    string
	prefix  []byte
	proto   Object
	indexes map[string]Index
}

var _ spades.QueryHandler = Bucket{}

// NewBucket returns a bucket called name. Stored values are decoded into
// clones of proto. An invalid name is a programming error and panics.
func NewBucket(name string, proto Object) Bucket {
	if !validBucketName(name) {
		panic(fmt.Sprintf("invalid bucket name %q", name))
	}
	return Bucket{name: name, prefix: []byte(name + ":"), proto: proto}
}

func (b Bucket) Name() string {
	return b.name
}

// DBKey returns the store key of the object with the given key. The result
// never shares memory with key.
func (b Bucket) DBKey(key []byte) []byte {
	full := make([]byte, 0, len(b.prefix)+len(key))
	full = append(full, b.prefix...)
	return append(full, key...)
}

// Sequence returns the counter called name that belongs to this bucket.
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// Register exposes the bucket at "/<name>" and every index at
// "/<name>/<index>". An empty name registers under the bucket name.
func (b Bucket) Register(name string, r spades.QueryRouter) {
	if name == "" {
		name = b.name
	}
	r.Register("/"+name, b)
	for idx, h := range b.indexes {
		r.Register("/"+name+"/"+idx, h)
	}
}

// Query returns the raw entry stored under data, or with the prefix mod
// every entry whose key starts with data.
func (b Bucket) Query(db spades.ReadOnlyKVStore, mod string, data []byte) ([]spades.Model, error) {
	switch mod {
	case spades.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	case spades.KeyQueryMod:
		key := b.DBKey(data)
		raw, err := db.Get(key)
		switch {
		case err != nil:
			return nil, err
		case raw == nil:
			return nil, nil
		}
		return []spades.Model{spades.Pair(key, raw)}, nil
	}
	return nil, errors.Wrapf(errors.ErrInput, "query mod %q", mod)
}

// Get loads the object stored under key. A missing object is nil without
// an error.
func (b Bucket) Get(db spades.ReadOnlyKVStore, key []byte) (Object, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil || raw == nil {
		return nil, err
	}
	return b.decode(key, raw)
}

func (b Bucket) decode(key, raw []byte) (Object, error) {
	obj := b.proto.Clone()
	obj.SetKey(key)
	if err := obj.Value().Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "%s %X", b.name, key)
	}
	return obj, nil
}

// Save validates obj, updates the indexes and writes it under its key.
func (b Bucket) Save(db spades.KVStore, obj Object) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	raw, err := obj.Value().Marshal()
	if err != nil {
		return errors.Wrapf(err, "%s %X", b.name, obj.Key())
	}
	if err := b.reindex(db, obj.Key(), obj); err != nil {
		return err
	}
	return db.Set(b.DBKey(obj.Key()), raw)
}

// Delete removes the object stored under key and its index entries.
func (b Bucket) Delete(db spades.KVStore, key []byte) error {
	if err := b.reindex(db, key, nil); err != nil {
		return err
	}
	return db.Delete(b.DBKey(key))
}

// reindex moves the index entries of the object under key from its stored
// state to next. A nil next removes them.
func (b Bucket) reindex(db spades.KVStore, key []byte, next Object) error {
	if len(b.indexes) == 0 {
		return nil
	}
	prev, err := b.Get(db, key)
	if err != nil {
		return err
	}
	if prev == nil && next == nil {
		return nil
	}
	for name, idx := range b.indexes {
		if err := idx.Update(db, prev, next); err != nil {
			return errors.Wrapf(err, "index %s", name)
		}
	}
	return nil
}

// WithIndex returns a copy of the bucket that also maintains the named
// index. Registering a name twice panics.
func (b Bucket) WithIndex(name string, indexer Indexer, unique bool) Bucket {
	return b.WithMultiKeyIndex(name, asMultiKeyIndexer(indexer), unique)
}

// WithMultiKeyIndex is WithIndex for indexers that return several values
// per object, such as the owners of a wallet.
func (b Bucket) WithMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool) Bucket {
	if _, ok := b.indexes[name]; ok {
		panic(fmt.Sprintf("bucket %s: index %s registered twice", b.name, name))
	}
	indexes := map[string]Index{
		name: NewMultiKeyIndex(b.name+"_"+name, indexer, unique, b.DBKey),
	}
	for n, idx := range b.indexes {
		indexes[n] = idx
	}
	b.indexes = indexes
	return b
}

func (b Bucket) index(name string) (Index, error) {
	idx, ok := b.indexes[name]
	if !ok {
		return Index{}, errors.Wrapf(ErrInvalidIndex, "%s has no index %s", b.name, name)
	}
	return idx, nil
}

// GetIndexed returns the objects the named index holds under value.
func (b Bucket) GetIndexed(db spades.ReadOnlyKVStore, name string, value []byte) ([]Object, error) {
	idx, err := b.index(name)
	if err != nil {
		return nil, err
	}
	refs, err := idx.GetAt(db, value)
	if err != nil {
		return nil, err
	}
	return b.load(db, refs)
}

// GetIndexedLike returns the objects the named index holds under the
// values pattern is indexed by.
func (b Bucket) GetIndexedLike(db spades.ReadOnlyKVStore, name string, pattern Object) ([]Object, error) {
	idx, err := b.index(name)
	if err != nil {
		return nil, err
	}
	refs, err := idx.GetLike(db, pattern)
	if err != nil {
		return nil, err
	}
	return b.load(db, refs)
}

// PrefixScan returns, in key order, the objects whose key starts with
// prefix.
func (b Bucket) PrefixScan(db spades.ReadOnlyKVStore, prefix []byte) ([]Object, error) {
	entries, err := queryPrefix(db, b.DBKey(prefix))
	if err != nil {
		return nil, err
	}
	objs := make([]Object, len(entries))
	for i, e := range entries {
		if objs[i], err = b.decode(e.Key[len(b.prefix):], e.Value); err != nil {
			return nil, err
		}
	}
	return objs, nil
}

func (b Bucket) load(db spades.ReadOnlyKVStore, keys [][]byte) ([]Object, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	objs := make([]Object, len(keys))
	for i, k := range keys {
		obj, err := b.Get(db, k)
		if err != nil {
			return nil, err
		}
		objs[i] = obj
	}
	return objs, nil
}

// queryPrefix returns, in key order, the entries whose key starts with
// prefix.
func queryPrefix(db spades.ReadOnlyKVStore, prefix []byte) ([]spades.Model, error) {
	it, err := db.Iterator(prefix, prefixEnd(prefix))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var entries []spades.Model
	for ; it.Valid(); err = it.Next() {
		if err != nil {
			return nil, err
		}
		entries = append(entries, spades.Pair(it.Key(), it.Value()))
	}
	return entries, err
}

// prefixEnd returns the exclusive upper bound of the keys starting with
// prefix, or nil when they run to the end of the key space.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for len(end) > 0 {
		last := len(end) - 1
		if end[last] != 0xff {
			end[last]++
			return end
		}
		end = end[:last]
	}
	return nil
}
