package orm

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// Counter is a minimal model used across the package tests.
type Counter struct {
	Count int64  `json:"count"`
	Label string `json:"label"`
}

var _ Model = (*Counter)(nil)

func (c *Counter) Marshal() ([]byte, error) {
	return spades.MarshalBinary(c)
}

func (c *Counter) Unmarshal(raw []byte) error {
	return spades.UnmarshalBinary(raw, c)
}

func (c *Counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrModel, "negative count")
	}
	return nil
}

func labelIndexer(obj Object) ([]byte, error) {
	c, ok := obj.Value().(*Counter)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	if c.Label == "" {
		return nil, nil
	}
	return []byte(c.Label), nil
}
