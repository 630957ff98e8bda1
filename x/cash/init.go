package cash

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// GenesisKey is the key of the genesis section read by the Initializer.
const GenesisKey = "cash"

// Initializer fulfils the Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ spades.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial account info from genesis and save it to
// the database
func (Initializer) FromGenesis(opts spades.Options, db spades.KVStore) error {
	var accounts []struct {
		Address spades.Address `json:"address"`
		Amount  int64          `json:"amount"`
	}
	if err := opts.ReadOptions(GenesisKey, &accounts); err != nil {
		return err
	}
	ctrl := NewController(nil)
	for i, acc := range accounts {
		if acc.Amount < 0 {
			return errors.Wrapf(errors.ErrAmount, "account %d: negative amount", i)
		}
		if err := ctrl.IssueCoins(db, acc.Address, acc.Amount); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
