package wallet

import (
	"encoding/binary"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// GetWallet returns the wallet with given id.
func GetWallet(db spades.ReadOnlyKVStore, id []byte) (*Wallet, error) {
	var w Wallet
	if err := NewWalletBucket().One(db, id, &w); err != nil {
		return nil, errors.Wrapf(err, "wallet %X", id)
	}
	return &w, nil
}

// GetTransaction returns the transaction of given wallet and nonce.
// ErrNotFound is returned when either does not exist.
func GetTransaction(db spades.ReadOnlyKVStore, walletID []byte, nonce uint64) (*Transaction, error) {
	if err := NewWalletBucket().Has(db, walletID); err != nil {
		return nil, errors.Wrapf(err, "wallet %X", walletID)
	}
	var tx Transaction
	if err := NewTransactionBucket().One(db, TransactionKey(walletID, nonce), &tx); err != nil {
		return nil, errors.Wrapf(err, "wallet %X nonce %d", walletID, nonce)
	}
	return &tx, nil
}

// SeeIfSigned returns true if the owner is credited for the transaction,
// either directly or through an aggregate signature. Unknown transactions
// are never signed.
func SeeIfSigned(db spades.ReadOnlyKVStore, walletID []byte, nonce uint64, owner spades.Address) (bool, error) {
	tx, err := GetTransaction(db, walletID, nonce)
	switch {
	case errors.ErrNotFound.Is(err):
		return false, nil
	case err != nil:
		return false, err
	}
	_, ok := tx.Credited(owner)
	return ok, nil
}

// ListTransactions returns all transactions of a wallet in nonce order.
func ListTransactions(db spades.ReadOnlyKVStore, walletID []byte) ([]*Transaction, error) {
	if err := validateID(walletID); err != nil {
		return nil, errors.Wrap(err, "wallet id")
	}
	var txs []*Transaction
	if err := NewTransactionBucket().ByPrefix(db, walletID, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// RegisterQuery registers the wallet query paths:
//
//   /wallets                 wallet by id or id prefix
//   /wallets/owner           wallets by owner address
//   /wallets/transactions    transaction by walletID ‖ nonce or walletID prefix
//   /wallets/signed          confirmation of walletID ‖ nonce ‖ owner
func RegisterQuery(qr spades.QueryRouter) {
	NewWalletBucket().Register("wallets", qr)
	NewTransactionBucket().Register("wallets/transactions", qr)
	qr.Register("/wallets/signed", signedQuery{})
}

// signedQuery answers SeeIfSigned. The result value is a single byte, 1
// when the owner is credited and 0 otherwise.
type signedQuery struct{}

var _ spades.QueryHandler = signedQuery{}

func (signedQuery) Query(db spades.ReadOnlyKVStore, mod string, data []byte) ([]spades.Model, error) {
	if mod != spades.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported mod: %s", mod)
	}
	if len(data) != idLength+8+spades.AddressLength {
		return nil, errors.Wrap(errors.ErrInput, "want wallet id, nonce and owner address")
	}
	walletID := data[:idLength]
	nonce := binary.BigEndian.Uint64(data[idLength : idLength+8])
	owner := spades.Address(data[idLength+8:])

	ok, err := SeeIfSigned(db, walletID, nonce, owner)
	if err != nil {
		return nil, err
	}
	val := []byte{0}
	if ok {
		val[0] = 1
	}
	return []spades.Model{spades.Pair(data, val)}, nil
}
