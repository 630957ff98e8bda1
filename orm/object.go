package orm

import (
	"reflect"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// Record is the Object every bucket of this module stores: a key and a
// model, for example a wallet under its sequence ID.
type Record struct {
	key   []byte
	model Model
}

var _ Object = (*Record)(nil)

// NewRecord returns a record holding m under key. Buckets are created with
// a record of a nil key and an empty model as their prototype.
func NewRecord(key []byte, m Model) *Record {
	return &Record{key: key, model: m}
}

func (r *Record) Key() []byte { return r.key }

func (r *Record) SetKey(key []byte) { r.key = key }

func (r *Record) Value() spades.Persistent { return r.model }

// Validate requires a key and a valid model.
func (r *Record) Validate() error {
	switch {
	case len(r.key) == 0:
		return errors.Field("Key", errors.ErrEmpty, "record key")
	case r.model == nil:
		return errors.Field("Value", errors.ErrEmpty, "record value")
	}
	return errors.Field("Value", r.model.Validate(), "record %X", r.key)
}

func (r *Record) Clone() Object {
	t := reflect.TypeOf(r.model).Elem()
	c := &Record{model: reflect.New(t).Interface().(Model)}
	if len(r.key) != 0 {
		c.key = append([]byte(nil), r.key...)
	}
	return c
}
