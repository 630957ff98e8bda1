package cash

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Balance is the amount of native value held by an address.
type Balance struct {
	Amount int64 `json:"amount"`
}

var _ orm.Model = (*Balance)(nil)

func (b *Balance) Validate() error {
	if b.Amount < 0 {
		return errors.Wrap(errors.ErrAmount, "negative balance")
	}
	return nil
}

func (b *Balance) Marshal() ([]byte, error) {
	return spades.MarshalBinary(b)
}

func (b *Balance) Unmarshal(raw []byte) error {
	return spades.UnmarshalBinary(raw, b)
}

// add increases the balance by amount, which may be negative. It fails
// instead of overflowing or going below zero.
func (b *Balance) add(amount int64) error {
	sum := b.Amount + amount
	switch {
	case amount > 0 && sum < b.Amount:
		return errors.Wrap(errors.ErrOverflow, "balance")
	case sum < 0:
		return errors.Wrapf(ErrInsufficientFunds, "have %d, need %d", b.Amount, -amount)
	}
	b.Amount = sum
	return nil
}

// NewBucket returns the bucket of all balances, keyed by address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Balance{})
}

// RegisterQuery will register the balances as "/balances"
func RegisterQuery(qr spades.QueryRouter) {
	NewBucket().Register("balances", qr)
}
