package wallet

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/crypto"
	"github.com/iov-one/spades/crypto/schnorr"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/orm"
	"github.com/iov-one/spades/x"
	"github.com/iov-one/spades/x/cash"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r spades.Registry, auth x.Authenticator, ctrl cash.Controller) {
	wallets := NewWalletBucket()
	txs := NewTransactionBucket()
	r.Handle(&CreateWalletMsg{}, CreateWalletHandler{auth: auth, wallets: wallets, ctrl: ctrl})
	r.Handle(&SubmitMsg{}, SubmitHandler{auth: auth, wallets: wallets, txs: txs, ctrl: ctrl})
	r.Handle(&SignTransactionMsg{}, SignHandler{auth: auth, wallets: wallets, txs: txs})
	r.Handle(&RevokeConfirmationMsg{}, RevokeHandler{auth: auth, wallets: wallets, txs: txs})
	r.Handle(&ExecuteTransactionMsg{}, ExecuteHandler{auth: auth, wallets: wallets, txs: txs, ctrl: ctrl})
}

// CreateWalletHandler is the wallet factory.
type CreateWalletHandler struct {
	auth    x.Authenticator
	wallets orm.ModelBucket
	ctrl    cash.Controller
}

var _ spades.Handler = CreateWalletHandler{}

func (h CreateWalletHandler) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &spades.CheckResult{}, nil
}

func (h CreateWalletHandler) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.DeliverResult, error) {
	msg, creator, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	w := &Wallet{
		Owners:    msg.Owners,
		Threshold: msg.Threshold,
		Creator:   creator,
	}
	id, err := h.wallets.Put(db, nil, w)
	if err != nil {
		return nil, errors.Wrap(err, "cannot store wallet")
	}
	addr := WalletAddress(id)
	if msg.InitialDeposit > 0 {
		if err := moveCoins(ctx, db, h.ctrl, creator, addr, msg.InitialDeposit, nil); err != nil {
			return nil, errors.Wrap(err, "initial deposit")
		}
	}

	spades.GetLogger(ctx).Debug("wallet created", "id", id, "owners", len(msg.Owners), "threshold", msg.Threshold)
	return &spades.DeliverResult{
		Data: id,
		Events: []spades.Event{WalletCreatedEvent{
			ID:        id,
			Address:   addr,
			Owners:    msg.Owners,
			Threshold: msg.Threshold,
		}},
	}, nil
}

func (h CreateWalletHandler) validate(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*CreateWalletMsg, spades.Address, error) {
	var msg CreateWalletMsg
	if err := spades.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	return &msg, signer.Address(), nil
}

// SubmitHandler lets an owner propose a transfer.
type SubmitHandler struct {
	auth    x.Authenticator
	wallets orm.ModelBucket
	txs     orm.ModelBucket
	ctrl    cash.Controller
}

var _ spades.Handler = SubmitHandler{}

func (h SubmitHandler) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &spades.CheckResult{}, nil
}

func (h SubmitHandler) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.DeliverResult, error) {
	msg, w, caller, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	nonce := w.NextNonce
	w.NextNonce++
	if _, err := h.wallets.Put(db, msg.WalletID, w); err != nil {
		return nil, errors.Wrap(err, "cannot store wallet")
	}

	t := &Transaction{
		WalletID:  msg.WalletID,
		Nonce:     nonce,
		Submitter: caller,
		Target:    msg.Target,
		Amount:    msg.Amount,
		Payload:   msg.Payload,
		Confirmations: []Confirmation{
			{Kind: Direct, Owner: caller},
		},
	}
	key := TransactionKey(msg.WalletID, nonce)
	if _, err := h.txs.Put(db, key, t); err != nil {
		return nil, errors.Wrap(err, "cannot store transaction")
	}

	return &spades.DeliverResult{
		Data: key[idLength:],
		Events: []spades.Event{SubmitEvent{
			Wallet:  msg.WalletID,
			Target:  msg.Target,
			Amount:  msg.Amount,
			Nonce:   nonce,
			Payload: msg.Payload,
		}},
	}, nil
}

func (h SubmitHandler) validate(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*SubmitMsg, *Wallet, spades.Address, error) {
	var msg SubmitMsg
	if err := spades.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	w, err := loadWallet(db, h.wallets, msg.WalletID)
	if err != nil {
		return nil, nil, nil, err
	}
	caller, err := ownerCaller(ctx, h.auth, w)
	if err != nil {
		return nil, nil, nil, err
	}
	balance, err := h.ctrl.Balance(db, WalletAddress(msg.WalletID))
	if err != nil {
		return nil, nil, nil, err
	}
	if msg.Amount > balance {
		return nil, nil, nil, errors.Wrapf(ErrInsufficientBalance, "balance %d, requested %d", balance, msg.Amount)
	}
	return &msg, w, caller, nil
}

// SignHandler credits owners for a pending transaction.
type SignHandler struct {
	auth    x.Authenticator
	wallets orm.ModelBucket
	txs     orm.ModelBucket
}

var _ spades.Handler = SignHandler{}

func (h SignHandler) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &spades.CheckResult{}, nil
}

func (h SignHandler) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.DeliverResult, error) {
	msg, t, credits, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	t.Confirmations = append(t.Confirmations, credits...)
	if _, err := h.txs.Put(db, TransactionKey(msg.WalletID, msg.Nonce), t); err != nil {
		return nil, errors.Wrap(err, "cannot store transaction")
	}

	owners := make([]spades.Address, len(credits))
	for i, c := range credits {
		owners[i] = c.Owner
	}
	return &spades.DeliverResult{
		Events: []spades.Event{SignEvent{
			Wallet: msg.WalletID,
			Nonce:  msg.Nonce,
			Owners: owners,
			Mode:   msg.Mode,
		}},
	}, nil
}

// validate returns the confirmations that the message adds to the
// transaction.
func (h SignHandler) validate(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*SignTransactionMsg, *Transaction, []Confirmation, error) {
	var msg SignTransactionMsg
	if err := spades.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	w, err := loadWallet(db, h.wallets, msg.WalletID)
	if err != nil {
		return nil, nil, nil, err
	}

	var caller spades.Address
	if msg.Mode == SignModeDirect {
		if caller, err = ownerCaller(ctx, h.auth, w); err != nil {
			return nil, nil, nil, err
		}
	}

	t, err := loadPending(db, h.txs, msg.WalletID, msg.Nonce)
	if err != nil {
		return nil, nil, nil, err
	}

	switch msg.Mode {
	case SignModeDirect:
		if _, ok := t.Credited(caller); ok {
			return nil, nil, nil, errors.Wrapf(ErrAlreadyConfirmed, "owner %s", caller)
		}
		return &msg, t, []Confirmation{{Kind: Direct, Owner: caller}}, nil
	case SignModeAggregate:
		credits, err := aggregateCredits(spades.GetChainID(ctx), w, t, msg.Aggregate)
		if err != nil {
			return nil, nil, nil, err
		}
		return &msg, t, credits, nil
	default:
		return nil, nil, nil, errors.Wrapf(errors.ErrMsg, "unknown mode %d", msg.Mode)
	}
}

// aggregateCredits verifies the proof against the transaction digest and
// returns a confirmation for every declared owner that is not credited yet.
func aggregateCredits(chainID string, w *Wallet, t *Transaction, proof *AggregateProof) ([]Confirmation, error) {
	owners := make([]spades.Address, len(proof.PublicKeys))
	for i, key := range proof.PublicKeys {
		addr := crypto.Secp256k1Condition(key).Address()
		if !w.IsOwner(addr) {
			return nil, errors.Wrapf(ErrInvalidSignature, "key %d is not an owner", i)
		}
		owners[i] = addr
	}

	agg, err := schnorr.AggregatePublicKeys(proof.PublicKeys)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	digest, err := TransactionDigest(chainID, t)
	if err != nil {
		return nil, err
	}
	if err := schnorr.VerifyAggregate(agg, digest, proof.Signature); err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}

	group := agg.Bytes()
	var credits []Confirmation
	for _, o := range owners {
		if _, ok := t.Credited(o); ok {
			continue
		}
		credits = append(credits, Confirmation{Kind: Aggregate, Owner: o, Group: group})
	}
	if len(credits) == 0 {
		return nil, errors.Wrap(ErrAlreadyConfirmed, "all declared owners are credited")
	}
	return credits, nil
}

// RevokeHandler withdraws a direct confirmation.
type RevokeHandler struct {
	auth    x.Authenticator
	wallets orm.ModelBucket
	txs     orm.ModelBucket
}

var _ spades.Handler = RevokeHandler{}

func (h RevokeHandler) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &spades.CheckResult{}, nil
}

func (h RevokeHandler) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.DeliverResult, error) {
	msg, t, caller, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	t.removeDirect(caller)
	if _, err := h.txs.Put(db, TransactionKey(msg.WalletID, msg.Nonce), t); err != nil {
		return nil, errors.Wrap(err, "cannot store transaction")
	}
	return &spades.DeliverResult{
		Events: []spades.Event{RevokeEvent{
			Wallet: msg.WalletID,
			Nonce:  msg.Nonce,
			Owner:  caller,
		}},
	}, nil
}

func (h RevokeHandler) validate(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*RevokeConfirmationMsg, *Transaction, spades.Address, error) {
	var msg RevokeConfirmationMsg
	if err := spades.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	w, err := loadWallet(db, h.wallets, msg.WalletID)
	if err != nil {
		return nil, nil, nil, err
	}
	caller, err := ownerCaller(ctx, h.auth, w)
	if err != nil {
		return nil, nil, nil, err
	}
	t, err := loadPending(db, h.txs, msg.WalletID, msg.Nonce)
	if err != nil {
		return nil, nil, nil, err
	}
	if c, ok := t.Credited(caller); !ok || c.Kind != Direct {
		return nil, nil, nil, errors.Wrapf(ErrNotConfirmed, "no direct confirmation of %s", caller)
	}
	return &msg, t, caller, nil
}

// ExecuteHandler releases the value of a transaction that reached quorum.
type ExecuteHandler struct {
	auth    x.Authenticator
	wallets orm.ModelBucket
	txs     orm.ModelBucket
	ctrl    cash.Controller
}

var _ spades.Handler = ExecuteHandler{}

func (h ExecuteHandler) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &spades.CheckResult{}, nil
}

func (h ExecuteHandler) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*spades.DeliverResult, error) {
	msg, t, caller, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	// Marked before the transfer so that a receiver observing the wallet
	// sees the final state. Any failure below discards this write.
	t.Executed = true
	if _, err := h.txs.Put(db, TransactionKey(msg.WalletID, msg.Nonce), t); err != nil {
		return nil, errors.Wrap(err, "cannot store transaction")
	}
	if err := moveCoins(ctx, db, h.ctrl, WalletAddress(msg.WalletID), t.Target, t.Amount, t.Payload); err != nil {
		return nil, err
	}

	spades.GetLogger(ctx).Debug("wallet transaction executed", "wallet", msg.WalletID, "nonce", msg.Nonce)
	return &spades.DeliverResult{
		Events: []spades.Event{ExecuteEvent{
			Wallet: msg.WalletID,
			Caller: caller,
			Nonce:  msg.Nonce,
		}},
	}, nil
}

func (h ExecuteHandler) validate(ctx spades.Context, db spades.KVStore, tx spades.Tx) (*ExecuteTransactionMsg, *Transaction, spades.Address, error) {
	var msg ExecuteTransactionMsg
	if err := spades.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	w, err := loadWallet(db, h.wallets, msg.WalletID)
	if err != nil {
		return nil, nil, nil, err
	}
	t, err := loadPending(db, h.txs, msg.WalletID, msg.Nonce)
	if err != nil {
		return nil, nil, nil, err
	}
	if n := t.Count(); n < int(w.Threshold) {
		return nil, nil, nil, errors.Wrapf(ErrInsufficientSignatures, "%d of %d", n, w.Threshold)
	}
	return &msg, t, signer.Address(), nil
}

func loadWallet(db spades.ReadOnlyKVStore, b orm.ModelBucket, id []byte) (*Wallet, error) {
	var w Wallet
	if err := b.One(db, id, &w); err != nil {
		return nil, errors.Wrapf(err, "wallet %X", id)
	}
	return &w, nil
}

// loadPending returns the transaction unless it was executed.
func loadPending(db spades.ReadOnlyKVStore, b orm.ModelBucket, walletID []byte, nonce uint64) (*Transaction, error) {
	var t Transaction
	if err := b.One(db, TransactionKey(walletID, nonce), &t); err != nil {
		return nil, errors.Wrapf(err, "nonce %d", nonce)
	}
	if t.Executed {
		return nil, errors.Wrapf(ErrAlreadyExecuted, "nonce %d", nonce)
	}
	return &t, nil
}

// ownerCaller returns the main signer if it is an owner of the wallet.
func ownerCaller(ctx spades.Context, auth x.Authenticator, w *Wallet) (spades.Address, error) {
	signer := x.MainSigner(ctx, auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	addr := signer.Address()
	if !w.IsOwner(addr) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s is not an owner", addr)
	}
	return addr, nil
}

// moveCoins transfers value and translates failures of the cash extension
// into wallet errors.
func moveCoins(ctx spades.Context, db spades.KVStore, ctrl cash.Controller, src, dest spades.Address, amount int64, payload []byte) error {
	err := ctrl.MoveCoins(ctx, db, src, dest, amount, payload)
	switch {
	case err == nil:
		return nil
	case cash.ErrInsufficientFunds.Is(err):
		return errors.Wrap(ErrInsufficientBalance, err.Error())
	case cash.ErrRejected.Is(err), errors.ErrOverflow.Is(err):
		return errors.Wrap(ErrTransferFailed, err.Error())
	default:
		return err
	}
}
