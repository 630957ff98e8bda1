package wallet

import (
	"encoding/binary"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/orm"
)

const (
	// WalletBucketName is where the wallets are stored.
	WalletBucketName = "wallet"
	// TransactionBucketName is where the transactions of all wallets are
	// stored, keyed by wallet id and nonce.
	TransactionBucketName = "wallettx"

	// MaxOwners is the greatest number of owners a wallet can have.
	MaxOwners = 100

	idLength = 8
)

// Wallet is the owner registry of a single wallet instance. Owners and
// threshold never change after creation.
type Wallet struct {
	Owners    []spades.Address `json:"owners"`
	Threshold uint32           `json:"threshold"`
	NextNonce uint64           `json:"next_nonce"`
	Creator   spades.Address   `json:"creator,omitempty"`
}

var _ orm.Model = (*Wallet)(nil)

// IsOwner returns true if given address is one of the wallet owners.
func (w *Wallet) IsOwner(addr spades.Address) bool {
	for _, o := range w.Owners {
		if o.Equals(addr) {
			return true
		}
	}
	return false
}

func (w *Wallet) Validate() error {
	if err := ValidateConfiguration(w.Owners, w.Threshold); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	if len(w.Creator) != 0 {
		if err := w.Creator.Validate(); err != nil {
			return errors.Wrap(err, "creator")
		}
	}
	return nil
}

func (w *Wallet) Marshal() ([]byte, error) {
	return spades.MarshalBinary(w)
}

func (w *Wallet) Unmarshal(raw []byte) error {
	return spades.UnmarshalBinary(raw, w)
}

// ValidateConfiguration returns ErrInvalidConfiguration unless owners is a
// non empty list of at most MaxOwners distinct, well formed addresses and
// the threshold is between one and the number of owners.
func ValidateConfiguration(owners []spades.Address, threshold uint32) error {
	switch n := len(owners); {
	case n == 0:
		return errors.Wrap(ErrInvalidConfiguration, "no owners")
	case n > MaxOwners:
		return errors.Wrapf(ErrInvalidConfiguration, "%d owners, at most %d allowed", n, MaxOwners)
	}
	seen := make(map[string]struct{}, len(owners))
	for i, o := range owners {
		if err := o.Validate(); err != nil {
			return errors.Wrapf(ErrInvalidConfiguration, "owner %d: %s", i, err)
		}
		if _, ok := seen[string(o)]; ok {
			return errors.Wrapf(ErrInvalidConfiguration, "duplicated owner %s", o)
		}
		seen[string(o)] = struct{}{}
	}
	if threshold == 0 || int(threshold) > len(owners) {
		return errors.Wrapf(ErrInvalidConfiguration, "threshold %d with %d owners", threshold, len(owners))
	}
	return nil
}

// ConfirmationKind tells how an owner was credited.
type ConfirmationKind int32

const (
	// Direct confirmations are given by an owner signing the host
	// transaction. Only those can be revoked.
	Direct ConfirmationKind = 1
	// Aggregate confirmations come from a multi signature.
	Aggregate ConfirmationKind = 2
)

func (k ConfirmationKind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Aggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// Confirmation credits one owner for a transaction.
type Confirmation struct {
	Kind  ConfirmationKind `json:"kind"`
	Owner spades.Address   `json:"owner"`
	// Group is the aggregate public key of an aggregate confirmation.
	Group []byte `json:"group,omitempty"`
}

// Transaction is a transfer proposed by one of the wallet owners.
type Transaction struct {
	WalletID      []byte         `json:"wallet_id"`
	Nonce         uint64         `json:"nonce"`
	Submitter     spades.Address `json:"submitter"`
	Target        spades.Address `json:"target"`
	Amount        int64          `json:"amount"`
	Payload       []byte         `json:"payload,omitempty"`
	Confirmations []Confirmation `json:"confirmations,omitempty"`
	Executed      bool           `json:"executed"`
}

var _ orm.Model = (*Transaction)(nil)

func (t *Transaction) Validate() error {
	var errs error
	if len(t.WalletID) != idLength {
		errs = errors.Append(errs, errors.Field("WalletID", errors.ErrInput, "must be %d bytes", idLength))
	}
	errs = errors.AppendField(errs, "Submitter", t.Submitter.Validate())
	errs = errors.AppendField(errs, "Target", t.Target.Validate())
	if t.Amount < 0 {
		errs = errors.Append(errs, errors.Field("Amount", errors.ErrAmount, "negative"))
	}
	seen := make(map[string]struct{}, len(t.Confirmations))
	for i, c := range t.Confirmations {
		if c.Kind != Direct && c.Kind != Aggregate {
			errs = errors.Append(errs, errors.Field("Confirmations", errors.ErrModel, "confirmation %d kind %d", i, c.Kind))
		}
		if err := c.Owner.Validate(); err != nil {
			errs = errors.Append(errs, errors.Field("Confirmations", err, "confirmation %d", i))
		}
		if _, ok := seen[string(c.Owner)]; ok {
			errs = errors.Append(errs, errors.Field("Confirmations", errors.ErrDuplicate, "owner %s", c.Owner))
		}
		seen[string(c.Owner)] = struct{}{}
	}
	return errs
}

func (t *Transaction) Marshal() ([]byte, error) {
	return spades.MarshalBinary(t)
}

func (t *Transaction) Unmarshal(raw []byte) error {
	return spades.UnmarshalBinary(raw, t)
}

// Count returns the number of credited owners.
func (t *Transaction) Count() int {
	return len(t.Confirmations)
}

// ConfirmedBy returns the owners that confirmed directly.
func (t *Transaction) ConfirmedBy() []spades.Address {
	var res []spades.Address
	for _, c := range t.Confirmations {
		if c.Kind == Direct {
			res = append(res, c.Owner)
		}
	}
	return res
}

// Credited returns the confirmation of given owner, if any.
func (t *Transaction) Credited(owner spades.Address) (Confirmation, bool) {
	for _, c := range t.Confirmations {
		if c.Owner.Equals(owner) {
			return c, true
		}
	}
	return Confirmation{}, false
}

// removeDirect drops the direct confirmation of given owner. It returns
// false when there was none.
func (t *Transaction) removeDirect(owner spades.Address) bool {
	for i, c := range t.Confirmations {
		if c.Kind == Direct && c.Owner.Equals(owner) {
			t.Confirmations = append(t.Confirmations[:i], t.Confirmations[i+1:]...)
			return true
		}
	}
	return false
}

// WalletCondition returns the condition that identifies the wallet with
// given id.
func WalletCondition(id []byte) spades.Condition {
	return spades.NewCondition("wallet", "seq", id)
}

// WalletAddress returns the address holding the balance of the wallet
// with given id.
func WalletAddress(id []byte) spades.Address {
	return WalletCondition(id).Address()
}

// TransactionKey returns the key of a transaction in its bucket.
func TransactionKey(walletID []byte, nonce uint64) []byte {
	key := make([]byte, len(walletID)+8)
	copy(key, walletID)
	binary.BigEndian.PutUint64(key[len(walletID):], nonce)
	return key
}

// NewWalletBucket returns the bucket of all wallets. Wallets are indexed
// by each of their owners.
func NewWalletBucket() orm.ModelBucket {
	return orm.NewModelBucket(WalletBucketName, &Wallet{},
		orm.WithMultiKeyIndex("owner", ownerIndexer, false))
}

func ownerIndexer(obj orm.Object) ([][]byte, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	w, ok := obj.Value().(*Wallet)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "can only take index of Wallet, got %T", obj.Value())
	}
	keys := make([][]byte, len(w.Owners))
	for i, o := range w.Owners {
		keys[i] = o
	}
	return keys, nil
}

// NewTransactionBucket returns the bucket of all wallet transactions.
func NewTransactionBucket() orm.ModelBucket {
	return orm.NewModelBucket(TransactionBucketName, &Transaction{})
}
