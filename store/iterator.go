package store

import "bytes"

// mergeIterator iterates over the entries of a cache layer and the store
// below it as over a single store. Layer entries shadow equal keys below
// and deleted entries hide them.
type mergeIterator struct {
	layer      []*entry
	below      Iterator
	descending bool
}

var _ Iterator = (*mergeIterator)(nil)

// newMergeIterator expects layer sorted in the iteration order of below.
func newMergeIterator(layer []*entry, below Iterator, descending bool) (*mergeIterator, error) {
	it := &mergeIterator{layer: layer, below: below, descending: descending}
	if err := it.skipDeleted(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

func (it *mergeIterator) Valid() bool {
	return len(it.layer) != 0 || it.belowValid()
}

func (it *mergeIterator) Next() error {
	fromLayer, fromBelow := it.head()
	if !fromLayer && !fromBelow {
		panic("iterator is exhausted")
	}
	if fromLayer {
		it.layer = it.layer[1:]
	}
	if fromBelow {
		if err := it.below.Next(); err != nil {
			return err
		}
	}
	return it.skipDeleted()
}

func (it *mergeIterator) Key() []byte {
	if fromLayer, _ := it.head(); fromLayer {
		return it.layer[0].key
	}
	return it.below.Key()
}

func (it *mergeIterator) Value() []byte {
	if fromLayer, _ := it.head(); fromLayer {
		return it.layer[0].value
	}
	return it.below.Value()
}

func (it *mergeIterator) Close() {
	if it.below != nil {
		it.below.Close()
	}
	it.layer = nil
}

// head tells which source holds the current key. Both do when the layer
// overwrites or deletes a key of the store below.
func (it *mergeIterator) head() (fromLayer, fromBelow bool) {
	switch {
	case len(it.layer) == 0:
		return false, it.belowValid()
	case !it.belowValid():
		return true, false
	}
	cmp := bytes.Compare(it.layer[0].key, it.below.Key())
	if it.descending {
		cmp = -cmp
	}
	return cmp <= 0, cmp >= 0
}

// skipDeleted advances past deleted layer entries at the head, together
// with the keys they hide.
func (it *mergeIterator) skipDeleted() error {
	for {
		fromLayer, fromBelow := it.head()
		if !fromLayer || !it.layer[0].deleted {
			return nil
		}
		it.layer = it.layer[1:]
		if fromBelow {
			if err := it.below.Next(); err != nil {
				return err
			}
		}
	}
}

func (it *mergeIterator) belowValid() bool {
	return it.below != nil && it.below.Valid()
}
