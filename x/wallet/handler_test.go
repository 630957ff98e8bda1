package wallet

import (
	"encoding/binary"
	"testing"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/spadestest"
	"github.com/iov-one/spades/x/cash"
	"github.com/stretchr/testify/require"
)

func TestCreateWallet(t *testing.T) {
	a, b := spadestest.NewCondition(), spadestest.NewCondition()

	cases := map[string]struct {
		signer      spades.Condition
		msg         *CreateWalletMsg
		wantErr     *errors.Error
		wantBalance int64
	}{
		"no signer": {
			msg:     &CreateWalletMsg{Owners: []spades.Address{a.Address()}, Threshold: 1},
			wantErr: errors.ErrUnauthorized,
		},
		"no owners": {
			signer:  a,
			msg:     &CreateWalletMsg{Threshold: 1},
			wantErr: ErrInvalidConfiguration,
		},
		"duplicated owner": {
			signer:  a,
			msg:     &CreateWalletMsg{Owners: []spades.Address{a.Address(), a.Address()}, Threshold: 1},
			wantErr: ErrInvalidConfiguration,
		},
		"threshold too high": {
			signer:  a,
			msg:     &CreateWalletMsg{Owners: []spades.Address{a.Address(), b.Address()}, Threshold: 3},
			wantErr: ErrInvalidConfiguration,
		},
		"zero threshold": {
			signer:  a,
			msg:     &CreateWalletMsg{Owners: []spades.Address{a.Address()}},
			wantErr: ErrInvalidConfiguration,
		},
		"deposit too high": {
			signer:  a,
			msg:     &CreateWalletMsg{Owners: []spades.Address{a.Address()}, Threshold: 1, InitialDeposit: 1000},
			wantErr: ErrInsufficientBalance,
		},
		"with deposit": {
			signer:      a,
			msg:         &CreateWalletMsg{Owners: []spades.Address{a.Address(), b.Address()}, Threshold: 2, InitialDeposit: 30},
			wantBalance: 30,
		},
		"creator does not have to be an owner": {
			signer: a,
			msg:    &CreateWalletMsg{Owners: []spades.Address{b.Address()}, Threshold: 1},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(t)
			e.issue(a.Address(), 100)

			res, err := e.deliver(tc.signer, tc.msg)
			isErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				require.Equal(t, int64(100), e.balance(a.Address()))
				return
			}

			id := res.Data
			require.Equal(t, spadestest.SequenceID(1), id)
			w, err := GetWallet(e.db, id)
			require.NoError(t, err)
			require.Equal(t, tc.msg.Owners, w.Owners)
			require.Equal(t, tc.msg.Threshold, w.Threshold)
			require.Equal(t, a.Address(), w.Creator)
			require.Equal(t, tc.wantBalance, e.balance(WalletAddress(id)))
			require.Equal(t, 100-tc.wantBalance, e.balance(a.Address()))

			events := spades.EventsOf(res.Events, "wallet.create")
			require.Len(t, events, 1)
			require.Equal(t, WalletAddress(id), events[0].(WalletCreatedEvent).Address)
		})
	}
}

func TestWalletsAreIndexedByOwner(t *testing.T) {
	e := newEnv(t)
	a, b, c := spadestest.NewCondition(), spadestest.NewCondition(), spadestest.NewCondition()
	e.createWallet(1, 0, a, b)
	e.createWallet(1, 0, b, c)

	var wallets []Wallet
	require.NoError(t, NewWalletBucket().ByIndex(e.db, "owner", b.Address(), &wallets))
	require.Len(t, wallets, 2)

	wallets = nil
	require.NoError(t, NewWalletBucket().ByIndex(e.db, "owner", c.Address(), &wallets))
	require.Len(t, wallets, 1)
}

func TestSignErrors(t *testing.T) {
	e := newEnv(t)
	a, b := spadestest.NewCondition(), spadestest.NewCondition()
	id := e.createWallet(2, 100, a, b)
	_, err := e.deliver(a, &SubmitMsg{WalletID: id, Target: b.Address(), Amount: 1})
	require.NoError(t, err)

	cases := map[string]struct {
		signer  spades.Condition
		msg     *SignTransactionMsg
		wantErr *errors.Error
	}{
		"not an owner": {
			signer:  spadestest.NewCondition(),
			msg:     &SignTransactionMsg{WalletID: id, Nonce: 0, Mode: SignModeDirect},
			wantErr: errors.ErrUnauthorized,
		},
		"unknown nonce": {
			signer:  b,
			msg:     &SignTransactionMsg{WalletID: id, Nonce: 7, Mode: SignModeDirect},
			wantErr: errors.ErrNotFound,
		},
		"unknown wallet": {
			signer:  b,
			msg:     &SignTransactionMsg{WalletID: spadestest.SequenceID(99), Nonce: 0, Mode: SignModeDirect},
			wantErr: errors.ErrNotFound,
		},
		"submitter already confirmed": {
			signer:  a,
			msg:     &SignTransactionMsg{WalletID: id, Nonce: 0, Mode: SignModeDirect},
			wantErr: ErrAlreadyConfirmed,
		},
		"unknown mode": {
			signer:  b,
			msg:     &SignTransactionMsg{WalletID: id, Nonce: 0},
			wantErr: errors.ErrMsg,
		},
		"aggregate without proof": {
			signer:  b,
			msg:     &SignTransactionMsg{WalletID: id, Nonce: 0, Mode: SignModeAggregate},
			wantErr: errors.ErrEmpty,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := e.deliver(tc.signer, tc.msg)
			isErr(t, tc.wantErr, err)
			require.Equal(t, 1, e.tx(id, 0).Count())
		})
	}
}

func TestAggregateConfirmation(t *testing.T) {
	a, b, c := newOwner(t), newOwner(t), newOwner(t)
	outsider := newOwner(t)
	d := spadestest.NewCondition().Address()

	setup := func(t *testing.T) (*env, []byte) {
		e := newEnv(t)
		id := e.createWallet(3, 100, a.Condition(), b.Condition(), c.Condition())
		_, err := e.deliver(a.Condition(), &SubmitMsg{WalletID: id, Target: d, Amount: 25, Payload: []byte("invoice")})
		require.NoError(t, err)
		return e, id
	}

	t.Run("two owners reach quorum in one call", func(t *testing.T) {
		e, id := setup(t)
		proof := aggregateProof(t, e.tx(id, 0), b, c)

		// anyone may relay the proof
		res, err := e.deliver(outsider.Condition(), &SignTransactionMsg{WalletID: id, Nonce: 0, Mode: SignModeAggregate, Aggregate: proof})
		require.NoError(t, err)

		tx := e.tx(id, 0)
		require.Equal(t, 3, tx.Count())
		require.Equal(t, []spades.Address{a.Address()}, tx.ConfirmedBy())
		events := spades.EventsOf(res.Events, "wallet.sign")
		require.Len(t, events, 1)
		require.Equal(t, []spades.Address{b.Address(), c.Address()}, events[0].(SignEvent).Owners)

		_, err = e.deliver(outsider.Condition(), &ExecuteTransactionMsg{WalletID: id, Nonce: 0})
		require.NoError(t, err)
		require.Equal(t, int64(25), e.balance(d))

		// aggregate credits are not revocable
		for _, o := range []owner{b, c} {
			signed, err := SeeIfSigned(e.db, id, 0, o.Address())
			require.NoError(t, err)
			require.True(t, signed)
		}
	})

	t.Run("aggregate credit cannot be revoked", func(t *testing.T) {
		e, id := setup(t)
		proof := aggregateProof(t, e.tx(id, 0), b)
		_, err := e.deliver(b.Condition(), &SignTransactionMsg{WalletID: id, Nonce: 0, Mode: SignModeAggregate, Aggregate: proof})
		require.NoError(t, err)

		_, err = e.deliver(b.Condition(), &RevokeConfirmationMsg{WalletID: id, Nonce: 0})
		isErr(t, ErrNotConfirmed, err)
		require.Equal(t, 2, e.tx(id, 0).Count())

		// and already credited owners cannot be credited again
		_, err = e.deliver(b.Condition(), &SignTransactionMsg{WalletID: id, Nonce: 0, Mode: SignModeDirect})
		isErr(t, ErrAlreadyConfirmed, err)
	})

	t.Run("only owners not yet credited are counted", func(t *testing.T) {
		e, id := setup(t)
		proof := aggregateProof(t, e.tx(id, 0), a, b)
		res, err := e.deliver(a.Condition(), &SignTransactionMsg{WalletID: id, Nonce: 0, Mode: SignModeAggregate, Aggregate: proof})
		require.NoError(t, err)
		require.Equal(t, 2, e.tx(id, 0).Count())
		require.Equal(t, []spades.Address{b.Address()}, res.Events[0].(SignEvent).Owners)

		// replaying the same proof credits nobody
		_, err = e.deliver(a.Condition(), &SignTransactionMsg{WalletID: id, Nonce: 0, Mode: SignModeAggregate, Aggregate: proof})
		isErr(t, ErrAlreadyConfirmed, err)
	})

	t.Run("keys declared in any order", func(t *testing.T) {
		e, id := setup(t)
		proof := aggregateProof(t, e.tx(id, 0), b, c)
		proof.PublicKeys[0], proof.PublicKeys[1] = proof.PublicKeys[1], proof.PublicKeys[0]
		_, err := e.deliver(b.Condition(), &SignTransactionMsg{WalletID: id, Nonce: 0, Mode: SignModeAggregate, Aggregate: proof})
		require.NoError(t, err)
		require.Equal(t, 3, e.tx(id, 0).Count())
	})

	invalid := map[string]func(t *testing.T, e *env, id []byte) *AggregateProof{
		"signer is not an owner": func(t *testing.T, e *env, id []byte) *AggregateProof {
			return aggregateProof(t, e.tx(id, 0), b, outsider)
		},
		"declared key did not sign": func(t *testing.T, e *env, id []byte) *AggregateProof {
			p := aggregateProof(t, e.tx(id, 0), b)
			p.PublicKeys = append(p.PublicKeys, c.PublicKey())
			return p
		},
		"signed key is not declared": func(t *testing.T, e *env, id []byte) *AggregateProof {
			p := aggregateProof(t, e.tx(id, 0), b, c)
			p.PublicKeys = p.PublicKeys[:1]
			return p
		},
		"signature of another transfer": func(t *testing.T, e *env, id []byte) *AggregateProof {
			other := *e.tx(id, 0)
			other.Amount = 99
			return aggregateProof(t, &other, b, c)
		},
		"duplicated key": func(t *testing.T, e *env, id []byte) *AggregateProof {
			p := aggregateProof(t, e.tx(id, 0), b)
			p.PublicKeys = append(p.PublicKeys, b.PublicKey())
			return p
		},
		"truncated signature": func(t *testing.T, e *env, id []byte) *AggregateProof {
			p := aggregateProof(t, e.tx(id, 0), b, c)
			p.Signature = p.Signature[:40]
			return p
		},
		"no keys": func(t *testing.T, e *env, id []byte) *AggregateProof {
			p := aggregateProof(t, e.tx(id, 0), b)
			p.PublicKeys = nil
			return p
		},
	}
	for testName, makeProof := range invalid {
		t.Run(testName, func(t *testing.T) {
			e, id := setup(t)
			proof := makeProof(t, e, id)
			_, err := e.deliver(a.Condition(), &SignTransactionMsg{WalletID: id, Nonce: 0, Mode: SignModeAggregate, Aggregate: proof})
			isErr(t, ErrInvalidSignature, err)
			require.Equal(t, 1, e.tx(id, 0).Count())
		})
	}
}

func TestExecuteIsAtomic(t *testing.T) {
	e := newEnv(t)
	a, b := spadestest.NewCondition(), spadestest.NewCondition()
	target := spadestest.NewCondition().Address()
	id := e.createWallet(1, 100, a, b)

	var (
		accept   bool
		received []byte
	)
	e.receivers.Register(target, cash.ReceiverFunc(func(ctx spades.Context, db spades.KVStore, from spades.Address, amount int64, payload []byte) error {
		if !accept {
			return errors.Wrap(errors.ErrState, "not accepting")
		}
		received = payload
		return nil
	}))

	_, err := e.deliver(a, &SubmitMsg{WalletID: id, Target: target, Amount: 60, Payload: []byte("order 7")})
	require.NoError(t, err)

	_, err = e.deliver(b, &ExecuteTransactionMsg{WalletID: id, Nonce: 0})
	isErr(t, ErrTransferFailed, err)
	require.False(t, e.tx(id, 0).Executed)
	require.Equal(t, int64(100), e.balance(WalletAddress(id)))
	require.Equal(t, int64(0), e.balance(target))

	accept = true
	_, err = e.deliver(b, &ExecuteTransactionMsg{WalletID: id, Nonce: 0})
	require.NoError(t, err)
	require.True(t, e.tx(id, 0).Executed)
	require.Equal(t, []byte("order 7"), received)
	require.Equal(t, int64(40), e.balance(WalletAddress(id)))
	require.Equal(t, int64(60), e.balance(target))
}

func TestExecuteWithDrainedWallet(t *testing.T) {
	e := newEnv(t)
	a := spadestest.NewCondition()
	d := spadestest.NewCondition().Address()
	id := e.createWallet(1, 50, a)

	for i := 0; i < 2; i++ {
		_, err := e.deliver(a, &SubmitMsg{WalletID: id, Target: d, Amount: 30})
		require.NoError(t, err)
	}
	_, err := e.deliver(a, &ExecuteTransactionMsg{WalletID: id, Nonce: 1})
	require.NoError(t, err)

	_, err = e.deliver(a, &ExecuteTransactionMsg{WalletID: id, Nonce: 0})
	isErr(t, ErrInsufficientBalance, err)
	require.False(t, e.tx(id, 0).Executed)

	_, err = e.deliver(nil, &ExecuteTransactionMsg{WalletID: id, Nonce: 0})
	isErr(t, errors.ErrUnauthorized, err)
	_, err = e.deliver(a, &ExecuteTransactionMsg{WalletID: id, Nonce: 5})
	isErr(t, errors.ErrNotFound, err)
}

func TestQueries(t *testing.T) {
	e := newEnv(t)
	a, b := spadestest.NewCondition(), spadestest.NewCondition()
	d := spadestest.NewCondition().Address()
	id := e.createWallet(2, 100, a, b)
	for i := 0; i < 3; i++ {
		_, err := e.deliver(a, &SubmitMsg{WalletID: id, Target: d, Amount: int64(i)})
		require.NoError(t, err)
	}

	qr := spades.NewQueryRouter()
	RegisterQuery(qr)

	res, err := qr.Handler("/wallets").Query(e.db, spades.KeyQueryMod, id)
	require.NoError(t, err)
	require.Len(t, res, 1)

	res, err = qr.Handler("/wallets/owner").Query(e.db, spades.KeyQueryMod, b.Address())
	require.NoError(t, err)
	require.Len(t, res, 1)

	res, err = qr.Handler("/wallets/transactions").Query(e.db, spades.PrefixQueryMod, id)
	require.NoError(t, err)
	require.Len(t, res, 3)
	for i, m := range res {
		var tx Transaction
		require.NoError(t, tx.Unmarshal(m.Value))
		require.Equal(t, uint64(i), tx.Nonce)
	}

	txs, err := ListTransactions(e.db, id)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	require.Equal(t, int64(2), txs[2].Amount)

	signed := func(nonce uint64, who spades.Address) byte {
		key := make([]byte, 0, 36)
		key = append(key, id...)
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], nonce)
		key = append(key, n[:]...)
		key = append(key, who...)
		res, err := qr.Handler("/wallets/signed").Query(e.db, spades.KeyQueryMod, key)
		require.NoError(t, err)
		require.Len(t, res, 1)
		return res[0].Value[0]
	}
	require.Equal(t, byte(1), signed(0, a.Address()))
	require.Equal(t, byte(0), signed(0, b.Address()))
	require.Equal(t, byte(0), signed(42, a.Address()))

	_, err = GetTransaction(e.db, id, 42)
	isErr(t, errors.ErrNotFound, err)
	_, err = GetTransaction(e.db, spadestest.SequenceID(42), 0)
	isErr(t, errors.ErrNotFound, err)
}
