package spadestest

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

var errNotSerializable = errors.Wrap(errors.ErrState, "test transaction is not serializable")

// Tx carries Msg, or fails to decode it with Err. It is never serialized.
type Tx struct {
	Msg spades.Msg
	Err error
}

var _ spades.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (spades.Msg, error) {
	if tx.Err != nil {
		return nil, tx.Err
	}
	return tx.Msg, nil
}

func (tx *Tx) Marshal() ([]byte, error) {
	return nil, errNotSerializable
}

func (tx *Tx) Unmarshal([]byte) error {
	return errNotSerializable
}

// Msg is routed to RoutePath. Its encoding is Serialized taken verbatim,
// and Err fails both validation and encoding.
type Msg struct {
	RoutePath  string
	Serialized []byte
	Err        error
}

var _ spades.Msg = (*Msg)(nil)

func (m *Msg) Path() string { return m.RoutePath }

func (m *Msg) Validate() error { return m.Err }

func (m *Msg) Marshal() ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Serialized, nil
}

func (m *Msg) Unmarshal(raw []byte) error {
	if m.Err != nil {
		return m.Err
	}
	m.Serialized = append([]byte(nil), raw...)
	return nil
}
