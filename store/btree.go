package store

import (
	"bytes"

	"github.com/google/btree"
)

// btreeDegree is the degree of the cache trees. Layers live for a single
// transaction or block and stay small.
const btreeDegree = 2

// MemStore returns an empty store held in memory only. It backs unit tests
// and the in-memory ledger of the tooling.
func MemStore() CacheableKVStore {
	var empty EmptyKVStore
	return NewBTreeCacheWrap(empty, empty.NewBatch(), nil)
}

// BTreeCacheWrap is a write layer over a read only store. Writes go to an
// ordered in-memory tree, shadowing the store below, and are recorded in a
// batch that Write applies. Deletes are kept in the tree as tombstones.
type BTreeCacheWrap struct {
	tree  *btree.BTree
	free  *btree.FreeList
	below ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap returns a layer over below that writes through batch.
// Layers stacked on each other share free, which may be nil for a new
// list.
func NewBTreeCacheWrap(below ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(btree.DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		tree:  btree.NewWithFreeList(btreeDegree, free),
		free:  free,
		below: below,
		batch: batch,
	}
}

// CacheWrap stacks a new layer on top of this one.
func (c BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(c, c.NewBatch(), c.free)
}

func (c BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(c)
}

// Write applies the changes of this layer to the store below and empties
// the layer.
func (c BTreeCacheWrap) Write() error {
	err := c.batch.Write()
	c.Discard()
	return err
}

// Discard drops every change of this layer. A later Write is a no-op.
func (c BTreeCacheWrap) Discard() {
	c.tree.Clear(true)
	if r, ok := c.batch.(interface{ Reset() }); ok {
		r.Reset()
	}
}

func (c BTreeCacheWrap) Set(key, value []byte) error {
	c.tree.ReplaceOrInsert(&entry{key: key, value: value})
	return c.batch.Set(key, value)
}

func (c BTreeCacheWrap) Delete(key []byte) error {
	c.tree.ReplaceOrInsert(&entry{key: key, deleted: true})
	return c.batch.Delete(key)
}

func (c BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	e, ok := c.lookup(key)
	if !ok {
		return c.below.Get(key)
	}
	return e.value, nil
}

func (c BTreeCacheWrap) Has(key []byte) (bool, error) {
	e, ok := c.lookup(key)
	if !ok {
		return c.below.Has(key)
	}
	return !e.deleted, nil
}

// lookup returns the entry this layer holds for key, if any.
func (c BTreeCacheWrap) lookup(key []byte) (*entry, bool) {
	item := c.tree.Get(&entry{key: key})
	if item == nil {
		return nil, false
	}
	return item.(*entry), true
}

// Iterator walks [start, end) in ascending order, merging this layer with
// the store below. Nil bounds are open.
func (c BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	below, err := c.below.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(c.entries(start, end, false), below, false)
}

// ReverseIterator walks [start, end) in descending order.
func (c BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	below, err := c.below.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(c.entries(start, end, true), below, true)
}

// entries returns the entries of this layer within [start, end).
func (c BTreeCacheWrap) entries(start, end []byte, descending bool) []*entry {
	var res []*entry
	collect := func(i btree.Item) bool {
		e := i.(*entry)
		if end != nil && bytes.Compare(e.key, end) >= 0 {
			// past the range ascending, not yet in it descending
			return descending
		}
		if start != nil && bytes.Compare(e.key, start) < 0 {
			return !descending
		}
		res = append(res, e)
		return true
	}
	switch {
	case descending && end != nil:
		c.tree.DescendLessOrEqual(&entry{key: end}, collect)
	case descending:
		c.tree.Descend(collect)
	case start != nil:
		c.tree.AscendGreaterOrEqual(&entry{key: start}, collect)
	default:
		c.tree.Ascend(collect)
	}
	return res
}

// entry is a key written in a cache layer. A deleted entry hides the key
// in the stores below.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

func (e *entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(*entry).key) < 0
}
