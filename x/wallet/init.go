package wallet

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/x/cash"
)

// GenesisKey is the key of the genesis section read by the Initializer.
const GenesisKey = "wallet"

// Initializer fulfils the Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ spades.Initializer = (*Initializer)(nil)

// FromGenesis creates all declared wallets in order, so the first one gets
// id 1. A declared balance is issued to the wallet address.
func (Initializer) FromGenesis(opts spades.Options, db spades.KVStore) error {
	var wallets []struct {
		Owners    []spades.Address `json:"owners"`
		Threshold uint32           `json:"threshold"`
		Balance   int64            `json:"balance"`
	}
	if err := opts.ReadOptions(GenesisKey, &wallets); err != nil {
		return err
	}

	bucket := NewWalletBucket()
	ctrl := cash.NewController(nil)
	for i, w := range wallets {
		if err := ValidateConfiguration(w.Owners, w.Threshold); err != nil {
			return errors.Wrapf(err, "wallet #%d", i)
		}
		id, err := bucket.Put(db, nil, &Wallet{Owners: w.Owners, Threshold: w.Threshold})
		if err != nil {
			return errors.Wrapf(err, "cannot save wallet #%d", i)
		}
		if w.Balance < 0 {
			return errors.Wrapf(errors.ErrAmount, "wallet #%d: negative balance", i)
		}
		if w.Balance > 0 {
			if err := ctrl.IssueCoins(db, WalletAddress(id), w.Balance); err != nil {
				return errors.Wrapf(err, "wallet #%d balance", i)
			}
		}
	}
	return nil
}
