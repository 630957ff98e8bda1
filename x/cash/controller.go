package cash

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/orm"
)

// Controller is the only way value moves between addresses.
type Controller interface {
	// Balance returns the amount held by an address. Unknown addresses
	// hold zero.
	Balance(db spades.ReadOnlyKVStore, addr spades.Address) (int64, error)

	// MoveCoins moves amount from src to dest and notifies the
	// receiver registered for dest, passing the payload along.
	MoveCoins(ctx spades.Context, db spades.KVStore, src, dest spades.Address, amount int64, payload []byte) error

	// IssueCoins creates amount out of nothing on dest. Used by genesis
	// and tests.
	IssueCoins(db spades.KVStore, dest spades.Address, amount int64) error
}

// BaseController is the default Controller implementation.
type BaseController struct {
	bucket    orm.ModelBucket
	receivers *Receivers
}

var _ Controller = BaseController{}

// NewController returns a controller notifying given receivers. Receivers
// may be nil.
func NewController(receivers *Receivers) BaseController {
	return BaseController{
		bucket:    NewBucket(),
		receivers: receivers,
	}
}

func (c BaseController) Balance(db spades.ReadOnlyKVStore, addr spades.Address) (int64, error) {
	b, err := c.load(db, addr)
	if err != nil {
		return 0, err
	}
	return b.Amount, nil
}

func (c BaseController) MoveCoins(ctx spades.Context, db spades.KVStore, src, dest spades.Address, amount int64, payload []byte) error {
	if amount < 0 {
		return errors.Wrapf(errors.ErrAmount, "negative amount %d", amount)
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}

	sender, err := c.load(db, src)
	if err != nil {
		return err
	}
	if err := sender.add(-amount); err != nil {
		return errors.Wrapf(err, "source %s", src)
	}
	if _, err := c.bucket.Put(db, src, sender); err != nil {
		return err
	}

	// loaded after the sender is saved, so sending to self is a noop
	recipient, err := c.load(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.add(amount); err != nil {
		return errors.Wrapf(err, "destination %s", dest)
	}
	if _, err := c.bucket.Put(db, dest, recipient); err != nil {
		return err
	}

	if rc := c.receivers.Get(dest); rc != nil {
		if err := rc.Receive(ctx, db, src, amount, payload); err != nil {
			return errors.Wrap(ErrRejected, err.Error())
		}
	}
	return nil
}

func (c BaseController) IssueCoins(db spades.KVStore, dest spades.Address, amount int64) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	recipient, err := c.load(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.add(amount); err != nil {
		return err
	}
	_, err = c.bucket.Put(db, dest, recipient)
	return err
}

func (c BaseController) load(db spades.ReadOnlyKVStore, addr spades.Address) (*Balance, error) {
	var b Balance
	switch err := c.bucket.One(db, addr, &b); {
	case err == nil:
		return &b, nil
	case errors.ErrNotFound.Is(err):
		return &Balance{}, nil
	default:
		return nil, err
	}
}
