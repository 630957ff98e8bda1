package store

// SliceIterator iterates over models already read into memory, in slice
// order.
type SliceIterator struct {
	models []Model
}

var _ Iterator = (*SliceIterator)(nil)

func NewSliceIterator(models []Model) *SliceIterator {
	return &SliceIterator{models: models}
}

func (s *SliceIterator) Valid() bool {
	return len(s.models) != 0
}

func (s *SliceIterator) Next() error {
	s.current()
	s.models = s.models[1:]
	return nil
}

func (s *SliceIterator) Key() []byte {
	return s.current().Key
}

func (s *SliceIterator) Value() []byte {
	return s.current().Value
}

func (s *SliceIterator) Close() {
	s.models = nil
}

func (s *SliceIterator) current() Model {
	if len(s.models) == 0 {
		panic("iterator is exhausted")
	}
	return s.models[0]
}

// EmptyKVStore holds nothing and ignores writes. It is the bottom of a
// store that lives in cache layers only.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get([]byte) ([]byte, error) { return nil, nil }

func (EmptyKVStore) Has([]byte) (bool, error) { return false, nil }

func (EmptyKVStore) Set(_, _ []byte) error { return nil }

func (EmptyKVStore) Delete([]byte) error { return nil }

func (EmptyKVStore) Iterator(_, _ []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

func (EmptyKVStore) ReverseIterator(_, _ []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

func (e EmptyKVStore) NewBatch() Batch {
	return NewNonAtomicBatch(e)
}

// Op is a recorded Set or Delete.
type Op struct {
	key    []byte
	value  []byte
	delete bool
}

func SetOp(key, value []byte) Op {
	return Op{key: key, value: value}
}

func DelOp(key []byte) Op {
	return Op{key: key, delete: true}
}

func (o Op) Key() []byte {
	return o.key
}

// IsSetOp returns the key and value of a Set. The flag is false for a
// Delete.
func (o Op) IsSetOp() (key, value []byte, ok bool) {
	if o.delete {
		return o.key, nil, false
	}
	return o.key, o.value, true
}

// Apply runs the operation against out.
func (o Op) Apply(out SetDeleter) error {
	if o.delete {
		return out.Delete(o.key)
	}
	return out.Set(o.key, o.value)
}

// NonAtomicBatch records operations and applies them one by one on Write.
// A failure halfway leaves the earlier operations applied, so it may only
// write to memory, such as a cache layer or an iavl working tree that is
// persisted as a whole on commit.
type NonAtomicBatch struct {
	out SetDeleter
	ops []Op
}

var _ Batch = (*NonAtomicBatch)(nil)

func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, SetOp(key, value))
	return nil
}

func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, DelOp(key))
	return nil
}

// Write applies the recorded operations in order and forgets them.
func (b *NonAtomicBatch) Write() error {
	ops := b.ops
	b.ops = nil
	for _, op := range ops {
		if err := op.Apply(b.out); err != nil {
			return err
		}
	}
	return nil
}

// Reset forgets the recorded operations without applying them.
func (b *NonAtomicBatch) Reset() {
	b.ops = nil
}

// ShowOps returns the operations recorded since the last Write.
func (b *NonAtomicBatch) ShowOps() []Op {
	return b.ops
}
