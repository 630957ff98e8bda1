package orm

import (
	"bytes"
	"sort"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// MultiRef is the value of a non unique index entry: the sorted primary
// keys of every object indexed under the same value, for example all
// wallets one address owns.
type MultiRef struct {
	Refs [][]byte `json:"refs"`
}

var _ Model = (*MultiRef)(nil)

// NewMultiRef returns a set holding refs. Duplicates are an error.
func NewMultiRef(refs ...[]byte) (*MultiRef, error) {
	var m MultiRef
	for _, r := range refs {
		if err := m.Add(r); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// search returns the position of ref in the set, or where it belongs.
func (m *MultiRef) search(ref []byte) (int, bool) {
	i := sort.Search(len(m.Refs), func(i int) bool {
		return bytes.Compare(m.Refs[i], ref) >= 0
	})
	return i, i < len(m.Refs) && bytes.Equal(m.Refs[i], ref)
}

// Add inserts ref, keeping the set sorted.
func (m *MultiRef) Add(ref []byte) error {
	i, ok := m.search(ref)
	if ok {
		return errors.Wrapf(errors.ErrDuplicate, "reference %X", ref)
	}
	m.Refs = append(m.Refs, nil)
	copy(m.Refs[i+1:], m.Refs[i:])
	m.Refs[i] = ref
	return nil
}

// Remove deletes ref from the set.
func (m *MultiRef) Remove(ref []byte) error {
	i, ok := m.search(ref)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "reference %X", ref)
	}
	m.Refs = append(m.Refs[:i], m.Refs[i+1:]...)
	return nil
}

// Validate rejects an empty set. Indexes delete their entry instead of
// storing one.
func (m *MultiRef) Validate() error {
	if len(m.Refs) == 0 {
		return errors.Wrap(errors.ErrEmpty, "references")
	}
	return nil
}

func (m *MultiRef) Marshal() ([]byte, error) {
	return spades.MarshalBinary(m)
}

func (m *MultiRef) Unmarshal(raw []byte) error {
	return spades.UnmarshalBinary(raw, m)
}
