package orm

import (
	"bytes"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// Indexer returns the value an object is indexed under. A nil value leaves
// the object out of the index.
type Indexer func(Object) ([]byte, error)

// MultiKeyIndexer returns every value an object is indexed under, such as
// each owner of a wallet.
type MultiKeyIndexer func(Object) ([][]byte, error)

func asMultiKeyIndexer(indexer Indexer) MultiKeyIndexer {
	return func(obj Object) ([][]byte, error) {
		v, err := indexer(obj)
		if err != nil || v == nil {
			return nil, err
		}
		return [][]byte{v}, nil
	}
}

/*
Index maps the values returned by an indexer to primary keys of a bucket.

Entries are stored under "_i.<name>:<value>". The entry of a unique index
holds the single primary key, otherwise a MultiRef with all of them. Queries
on an index return the referenced bucket entries.
*/
type Index struct {
	name    string
	prefix  []byte
	unique  bool
	indexer MultiKeyIndexer
	refKey  func([]byte) []byte
}

var _ spades.QueryHandler = Index{}

// NewMultiKeyIndex returns an index called name. refKey turns a primary key
// into the store key of the referenced object.
func NewMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool, refKey func([]byte) []byte) Index {
	return Index{
		name:    name,
		prefix:  []byte("_i." + name + ":"),
		unique:  unique,
		indexer: indexer,
		refKey:  refKey,
	}
}

func (i Index) Name() string {
	return i.name
}

// IndexKey returns the store key of the entry for value.
func (i Index) IndexKey(value []byte) []byte {
	key := make([]byte, 0, len(i.prefix)+len(value))
	key = append(key, i.prefix...)
	return append(key, value...)
}

// values returns the non empty values obj is indexed under. A nil object
// has none.
func (i Index) values(obj Object) ([][]byte, error) {
	if obj == nil {
		return nil, nil
	}
	all, err := i.indexer(obj)
	if err != nil {
		return nil, err
	}
	var res [][]byte
	for _, v := range all {
		if len(v) != 0 {
			res = append(res, v)
		}
	}
	return res, nil
}

// Update moves the references of an object from the values prev is indexed
// under to those of next. A nil prev is an insert and a nil next a delete.
// The primary key of an object cannot change.
func (i Index) Update(db spades.KVStore, prev, next Object) error {
	var pk []byte
	switch {
	case prev == nil && next == nil:
		return errors.Wrap(errors.ErrHuman, "index update without object")
	case prev == nil:
		pk = next.Key()
	case next == nil:
		pk = prev.Key()
	case !bytes.Equal(prev.Key(), next.Key()):
		return errors.Wrapf(errors.ErrState, "index %s: primary key changed", i.name)
	default:
		pk = next.Key()
	}

	before, err := i.values(prev)
	if err != nil {
		return err
	}
	after, err := i.values(next)
	if err != nil {
		return err
	}
	added, removed := subtract(after, before), subtract(before, after)

	if i.unique {
		for _, v := range added {
			taken, err := db.Has(i.IndexKey(v))
			if err != nil {
				return err
			}
			if taken {
				return errors.Wrapf(ErrUniqueConstraint, "index %s", i.name)
			}
		}
	}
	for _, v := range removed {
		if err := i.remove(db, v, pk); err != nil {
			return err
		}
	}
	for _, v := range added {
		if err := i.insert(db, v, pk); err != nil {
			return err
		}
	}
	return nil
}

func (i Index) insert(db spades.KVStore, value, pk []byte) error {
	key := i.IndexKey(value)
	if i.unique {
		return db.Set(key, pk)
	}
	refs, err := i.loadSet(db, key)
	if err != nil {
		return err
	}
	if err := refs.Add(pk); err != nil {
		return err
	}
	return i.storeSet(db, key, refs)
}

func (i Index) remove(db spades.KVStore, value, pk []byte) error {
	key := i.IndexKey(value)
	if i.unique {
		cur, err := db.Get(key)
		if err != nil {
			return err
		}
		if !bytes.Equal(cur, pk) {
			return errors.Wrapf(errors.ErrNotFound, "index %s: %X not referenced", i.name, pk)
		}
		return db.Delete(key)
	}
	refs, err := i.loadSet(db, key)
	if err != nil {
		return err
	}
	if err := refs.Remove(pk); err != nil {
		return err
	}
	return i.storeSet(db, key, refs)
}

func (i Index) loadSet(db spades.ReadOnlyKVStore, key []byte) (*MultiRef, error) {
	var refs MultiRef
	raw, err := db.Get(key)
	if err != nil || raw == nil {
		return &refs, err
	}
	if err := refs.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "index %s", i.name)
	}
	return &refs, nil
}

// storeSet writes refs under key, deleting the entry once it is empty.
func (i Index) storeSet(db spades.KVStore, key []byte, refs *MultiRef) error {
	if len(refs.Refs) == 0 {
		return db.Delete(key)
	}
	raw, err := refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, raw)
}

// decode returns the primary keys held by a stored entry.
func (i Index) decode(raw []byte) ([][]byte, error) {
	switch {
	case raw == nil:
		return nil, nil
	case i.unique:
		return [][]byte{raw}, nil
	}
	var refs MultiRef
	if err := refs.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "index %s", i.name)
	}
	return refs.Refs, nil
}

// GetAt returns the primary keys indexed under value.
func (i Index) GetAt(db spades.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	raw, err := db.Get(i.IndexKey(value))
	if err != nil {
		return nil, err
	}
	return i.decode(raw)
}

// GetLike returns the primary keys indexed under any value of pattern,
// each once.
func (i Index) GetLike(db spades.ReadOnlyKVStore, pattern Object) ([][]byte, error) {
	values, err := i.values(pattern)
	if err != nil {
		return nil, err
	}
	var res [][]byte
	for _, v := range values {
		pks, err := i.GetAt(db, v)
		if err != nil {
			return nil, err
		}
		res = append(res, subtract(pks, res)...)
	}
	return res, nil
}

// GetPrefix returns the primary keys indexed under any value starting with
// prefix, in value order.
func (i Index) GetPrefix(db spades.ReadOnlyKVStore, prefix []byte) ([][]byte, error) {
	entries, err := queryPrefix(db, i.IndexKey(prefix))
	if err != nil {
		return nil, err
	}
	var res [][]byte
	for _, e := range entries {
		pks, err := i.decode(e.Value)
		if err != nil {
			return nil, err
		}
		res = append(res, pks...)
	}
	return res, nil
}

// Query returns the bucket entries referenced under the query data, or
// with the prefix mod under every value starting with it.
func (i Index) Query(db spades.ReadOnlyKVStore, mod string, data []byte) ([]spades.Model, error) {
	var lookup func(spades.ReadOnlyKVStore, []byte) ([][]byte, error)
	switch mod {
	case spades.KeyQueryMod:
		lookup = i.GetAt
	case spades.PrefixQueryMod:
		lookup = i.GetPrefix
	default:
		return nil, errors.Wrapf(errors.ErrInput, "query mod %q", mod)
	}
	pks, err := lookup(db, data)
	if err != nil || len(pks) == 0 {
		return nil, err
	}
	res := make([]spades.Model, len(pks))
	for n, pk := range pks {
		key := i.refKey(pk)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		res[n] = spades.Pair(key, value)
	}
	return res, nil
}

// subtract returns the elements of all that are not in drop.
func subtract(all, drop [][]byte) [][]byte {
	var res [][]byte
	for _, a := range all {
		if !containsBytes(drop, a) {
			res = append(res, a)
		}
	}
	return res
}

func containsBytes(set [][]byte, b []byte) bool {
	for _, s := range set {
		if bytes.Equal(s, b) {
			return true
		}
	}
	return false
}
