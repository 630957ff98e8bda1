package orm

import (
	"reflect"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// ModelBucket is implemented by buckets that operates on Models rather than
// Objects.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db spades.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists,
	// ErrNotFound otherwise.
	Has(db spades.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database. If key is nil, the next value
	// of the bucket id sequence is used. The key used is returned.
	Put(db spades.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db spades.KVStore, key []byte) error

	// ByIndex returns all entities that the named index holds under given
	// key. Destination must be a pointer to a slice of models.
	ByIndex(db spades.ReadOnlyKVStore, indexName string, key []byte, destination interface{}) error

	// ByPrefix loads all entities whose key starts with prefix, in key
	// order. Destination must be a pointer to a slice of models.
	ByPrefix(db spades.ReadOnlyKVStore, prefix []byte, destination interface{}) error

	// Register registers this bucket and its indexes in the query router.
	Register(name string, r spades.QueryRouter)
}

// NewModelBucket returns a ModelBucket instance storing models of the
// same type as proto under the given bucket name.
func NewModelBucket(name string, proto Model, opts ...ModelBucketOption) ModelBucket {
	b := NewBucket(name, NewRecord(nil, proto))
	mb := &modelBucket{
		b:     b,
		idSeq: b.Sequence(SeqID),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using value returned by the
// indexer function. If an index is unique, there can be only one entity
// referenced per index value.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.b = mb.b.WithIndex(name, indexer, unique)
	}
}

// WithMultiKeyIndex is like WithIndex but an entity can be referenced
// under many index values.
func WithMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.b = mb.b.WithMultiKeyIndex(name, indexer, unique)
	}
}

type modelBucket struct {
	b     Bucket
	idSeq Sequence
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) One(db spades.ReadOnlyKVStore, key []byte, dest Model) error {
	obj, err := mb.b.Get(db, key)
	if err != nil {
		return err
	}
	if obj == nil || obj.Value() == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	res := obj.Value()

	if !reflect.TypeOf(res).AssignableTo(reflect.TypeOf(dest)) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %T", res, dest)
	}

	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(res).Elem())
	return nil
}

func (mb *modelBucket) Has(db spades.ReadOnlyKVStore, key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrNotFound, "nil key")
	}
	ok, err := db.Has(mb.b.DBKey(key))
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrNotFound
	}
	return nil
}

func (mb *modelBucket) Put(db spades.KVStore, key []byte, m Model) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}
	if len(key) == 0 {
		var err error
		key, err = mb.idSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "id sequence")
		}
	}
	obj := NewRecord(key, m)
	if err := mb.b.Save(db, obj); err != nil {
		return nil, errors.Wrap(err, "cannot store in the database")
	}
	return key, nil
}

func (mb *modelBucket) Delete(db spades.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}

func (mb *modelBucket) ByIndex(db spades.ReadOnlyKVStore, indexName string, key []byte, destination interface{}) error {
	objs, err := mb.b.GetIndexed(db, indexName, key)
	if err != nil {
		return err
	}
	return loadInto(objs, destination)
}

func (mb *modelBucket) ByPrefix(db spades.ReadOnlyKVStore, prefix []byte, destination interface{}) error {
	objs, err := mb.b.PrefixScan(db, prefix)
	if err != nil {
		return err
	}
	return loadInto(objs, destination)
}

func (mb *modelBucket) Register(name string, r spades.QueryRouter) {
	mb.b.Register(name, r)
}

// loadInto appends the values of all objects to the slice pointed to by
// destination. The slice element type may be a model or a pointer to it.
func loadInto(objs []Object, destination interface{}) error {
	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.Elem().Kind() != reflect.Slice {
		return errors.Wrapf(errors.ErrType, "destination must be a pointer to slice, got %T", destination)
	}
	slice := dest.Elem()
	elemType := slice.Type().Elem()
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		val := reflect.ValueOf(obj.Value())
		switch {
		case val.Type().AssignableTo(elemType):
			slice = reflect.Append(slice, val)
		case val.Elem().Type().AssignableTo(elemType):
			slice = reflect.Append(slice, val.Elem())
		default:
			return errors.Wrapf(errors.ErrType, "%s cannot be represented as %s", val.Type(), elemType)
		}
	}
	dest.Elem().Set(slice)
	return nil
}
