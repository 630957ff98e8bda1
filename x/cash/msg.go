package cash

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

const (
	pathSendMsg = "cash/send"

	maxMemoSize = 128
)

func init() {
	spades.RegisterMsg(&SendMsg{}, pathSendMsg)
}

// SendMsg moves Amount from Source to Destination. Source must be
// authenticated by the enclosing transaction.
type SendMsg struct {
	Source      spades.Address `json:"source"`
	Destination spades.Address `json:"destination"`
	Amount      int64          `json:"amount"`
	Memo        string         `json:"memo,omitempty"`
}

var _ spades.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (*SendMsg) Path() string {
	return pathSendMsg
}

// Validate makes sure that this is sensible
func (s *SendMsg) Validate() error {
	var errs error
	if s.Amount <= 0 {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrAmount, "must be positive"))
	}
	errs = errors.AppendField(errs, "Source", s.Source.Validate())
	errs = errors.AppendField(errs, "Destination", s.Destination.Validate())
	if len(s.Memo) > maxMemoSize {
		errs = errors.Append(errs, errors.Field("Memo", errors.ErrInput, "cannot be longer than %d", maxMemoSize))
	}
	return errs
}

func (s *SendMsg) Marshal() ([]byte, error) {
	return spades.MarshalBinary(s)
}

func (s *SendMsg) Unmarshal(raw []byte) error {
	return spades.UnmarshalBinary(raw, s)
}
