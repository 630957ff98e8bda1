package spades

import (
	"github.com/iov-one/spades/errors"
	amino "github.com/tendermint/go-amino"
)

// Codec is shared by all extensions for binary model and message encoding.
// Message implementations must register themselves (RegisterMsg) so that a
// transaction can carry them behind the Msg interface.
var Codec = amino.NewCodec()

func init() {
	Codec.RegisterInterface((*Msg)(nil), nil)
}

// RegisterMsg makes the message type available for transaction encoding
// under the given name. Call it from an init function.
func RegisterMsg(msg Msg, name string) {
	Codec.RegisterConcrete(msg, name, nil)
}

// MarshalBinary serializes given object using the shared codec.
func MarshalBinary(obj interface{}) ([]byte, error) {
	raw, err := Codec.MarshalBinaryBare(obj)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "marshal %T: %s", obj, err)
	}
	return raw, nil
}

// UnmarshalBinary deserializes data into given pointer using the shared codec.
func UnmarshalBinary(raw []byte, ptr interface{}) error {
	if err := Codec.UnmarshalBinaryBare(raw, ptr); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal %T: %s", ptr, err)
	}
	return nil
}
