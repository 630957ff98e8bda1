package wallet

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/crypto"
	"github.com/iov-one/spades/crypto/schnorr"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/spadestest"
	"github.com/iov-one/spades/store"
	"github.com/iov-one/spades/x/cash"
)

const testChainID = "test-chain"

// testRouter dispatches by message path like the application router.
type testRouter map[string]spades.Handler

func (r testRouter) Handle(m spades.Msg, h spades.Handler) {
	r[m.Path()] = h
}

// env runs every delivery in its own cache wrap, so a failed operation
// leaves no trace.
type env struct {
	t         testing.TB
	db        spades.CacheableKVStore
	auth      *spadestest.CtxAuth
	router    testRouter
	ctrl      cash.BaseController
	receivers *cash.Receivers
}

func newEnv(t testing.TB) *env {
	receivers := cash.NewReceivers()
	e := &env{
		t:         t,
		db:        store.MemStore(),
		auth:      &spadestest.CtxAuth{Key: "signers"},
		router:    make(testRouter),
		ctrl:      cash.NewController(receivers),
		receivers: receivers,
	}
	RegisterRoutes(e.router, e.auth, e.ctrl)
	return e
}

func (e *env) ctx(signer spades.Condition) spades.Context {
	ctx := spades.WithChainID(context.Background(), testChainID)
	if signer == nil {
		return ctx
	}
	return e.auth.SetConditions(ctx, signer)
}

func (e *env) deliver(signer spades.Condition, msg spades.Msg) (*spades.DeliverResult, error) {
	h, ok := e.router[msg.Path()]
	if !ok {
		e.t.Fatalf("no handler for %q", msg.Path())
	}
	tx := &spadestest.Tx{Msg: msg}
	if _, err := h.Check(e.ctx(signer), e.db.CacheWrap(), tx); err != nil {
		return nil, err
	}
	cache := e.db.CacheWrap()
	res, err := h.Deliver(e.ctx(signer), cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		e.t.Fatalf("cannot write: %s", err)
	}
	return res, nil
}

func (e *env) issue(addr spades.Address, amount int64) {
	if err := e.ctrl.IssueCoins(e.db, addr, amount); err != nil {
		e.t.Fatalf("cannot issue coins: %s", err)
	}
}

func (e *env) balance(addr spades.Address) int64 {
	b, err := e.ctrl.Balance(e.db, addr)
	if err != nil {
		e.t.Fatalf("cannot read balance: %s", err)
	}
	return b
}

// createWallet creates a wallet of given owners and funds it.
func (e *env) createWallet(threshold uint32, balance int64, owners ...spades.Condition) []byte {
	addrs := make([]spades.Address, len(owners))
	for i, o := range owners {
		addrs[i] = o.Address()
	}
	res, err := e.deliver(owners[0], &CreateWalletMsg{Owners: addrs, Threshold: threshold})
	if err != nil {
		e.t.Fatalf("cannot create wallet: %+v", err)
	}
	e.issue(WalletAddress(res.Data), balance)
	return res.Data
}

func (e *env) tx(walletID []byte, nonce uint64) *Transaction {
	t, err := GetTransaction(e.db, walletID, nonce)
	if err != nil {
		e.t.Fatalf("cannot get transaction: %+v", err)
	}
	return t
}

// owner is a secp256k1 signer that can take part in aggregate signatures.
type owner struct {
	priv *btcec.PrivateKey
	key  *crypto.PrivateKey
}

func newOwner(t testing.TB) owner {
	key := spadestest.NewKey()
	priv, err := schnorr.PrivateKeyFromBytes(key.Data)
	if err != nil {
		t.Fatalf("cannot parse key: %s", err)
	}
	return owner{priv: priv, key: key}
}

func (o owner) Condition() spades.Condition {
	return o.key.PublicKey().Condition()
}

func (o owner) Address() spades.Address {
	return o.Condition().Address()
}

func (o owner) PublicKey() []byte {
	return o.key.PublicKey().Data
}

// aggregateProof signs the confirmation digest of a stored transaction by
// all given owners.
func aggregateProof(t testing.TB, tx *Transaction, owners ...owner) *AggregateProof {
	digest, err := TransactionDigest(testChainID, tx)
	if err != nil {
		t.Fatalf("cannot build digest: %s", err)
	}
	privs := make([]*btcec.PrivateKey, len(owners))
	keys := make([][]byte, len(owners))
	for i, o := range owners {
		privs[i] = o.priv
		keys[i] = o.PublicKey()
	}
	sig, _, err := schnorr.SignAggregate(digest, privs...)
	if err != nil {
		t.Fatalf("cannot sign: %s", err)
	}
	return &AggregateProof{Signature: sig, PublicKeys: keys}
}

func isErr(t testing.TB, want *errors.Error, got error) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Fatalf("unexpected error: %+v", got)
		}
		return
	}
	if !want.Is(got) {
		t.Fatalf("want %q, got %+v", want, got)
	}
}
