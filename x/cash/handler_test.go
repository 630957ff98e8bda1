package cash

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/spadestest"
	"github.com/iov-one/spades/spadestest/assert"
	"github.com/iov-one/spades/store"
)

func TestSendHandler(t *testing.T) {
	alice := spadestest.NewCondition()
	bob := spadestest.NewCondition()

	cases := map[string]struct {
		signers     []spades.Condition
		msg         spades.Msg
		checkErr    *errors.Error
		deliverErr  *errors.Error
		wantBalance int64
	}{
		"unknown message": {
			msg:         &spadestest.Msg{RoutePath: "foo/bar"},
			checkErr:    errors.ErrType,
			deliverErr:  errors.ErrType,
			wantBalance: 100,
		},
		"missing amount": {
			signers:     []spades.Condition{alice},
			msg:         &SendMsg{Source: alice.Address(), Destination: bob.Address()},
			checkErr:    errors.ErrAmount,
			deliverErr:  errors.ErrAmount,
			wantBalance: 100,
		},
		"not signed by source": {
			signers:     []spades.Condition{bob},
			msg:         &SendMsg{Source: alice.Address(), Destination: bob.Address(), Amount: 10},
			checkErr:    errors.ErrUnauthorized,
			deliverErr:  errors.ErrUnauthorized,
			wantBalance: 100,
		},
		"too poor": {
			signers:     []spades.Condition{alice},
			msg:         &SendMsg{Source: alice.Address(), Destination: bob.Address(), Amount: 101},
			deliverErr:  ErrInsufficientFunds,
			wantBalance: 100,
		},
		"success": {
			signers:     []spades.Condition{alice},
			msg:         &SendMsg{Source: alice.Address(), Destination: bob.Address(), Amount: 60, Memo: "rent"},
			wantBalance: 40,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			auth := &spadestest.Auth{Signers: tc.signers}
			ctrl := NewController(nil)
			h := NewSendHandler(auth, ctrl)

			db := store.MemStore()
			assert.Nil(t, ctrl.IssueCoins(db, alice.Address(), 100))

			tx := &spadestest.Tx{Msg: tc.msg}
			ctx := context.Background()

			_, err := h.Check(ctx, db.CacheWrap(), tx)
			checkIs(t, tc.checkErr, err)

			cache := db.CacheWrap()
			res, err := h.Deliver(ctx, cache, tx)
			checkIs(t, tc.deliverErr, err)
			if err == nil {
				assert.Nil(t, cache.Write())
				events := spades.EventsOf(res.Events, "cash.transfer")
				assert.Equal(t, 1, len(events))
			} else {
				cache.Discard()
			}

			got, err := ctrl.Balance(db, alice.Address())
			assert.Nil(t, err)
			assert.Equal(t, tc.wantBalance, got)
		})
	}
}

func checkIs(t testing.TB, want *errors.Error, got error) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	assert.IsErr(t, want, got)
}

func TestBalanceQuery(t *testing.T) {
	addr := spadestest.NewCondition().Address()
	db := store.MemStore()
	assert.Nil(t, NewController(nil).IssueCoins(db, addr, 77))

	qr := spades.NewQueryRouter()
	RegisterQuery(qr)
	h := qr.Handler("/balances")
	if h == nil {
		t.Fatal("/balances not registered")
	}

	res, err := h.Query(db, spades.KeyQueryMod, addr)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))

	var b Balance
	assert.Nil(t, b.Unmarshal(res[0].Value))
	assert.Equal(t, int64(77), b.Amount)
}

func TestGenesis(t *testing.T) {
	alice := spadestest.NewCondition().Address()
	bob := spadestest.NewCondition().Address()

	genesis := `{"cash": [
		{"address": "` + alice.String() + `", "amount": 100},
		{"address": "` + bob.String() + `", "amount": 5}
	]}`
	var opts spades.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	ctrl := NewController(nil)
	got, err := ctrl.Balance(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, int64(100), got)
	got, err = ctrl.Balance(db, bob)
	assert.Nil(t, err)
	assert.Equal(t, int64(5), got)

	bad := spades.Options{"cash": json.RawMessage(`[{"address": "` + alice.String() + `", "amount": -1}]`)}
	assert.IsErr(t, errors.ErrAmount, Initializer{}.FromGenesis(bad, store.MemStore()))
}

func TestSendMsgValidate(t *testing.T) {
	addr := spadestest.NewCondition().Address()
	long := make([]byte, maxMemoSize+1)
	for i := range long {
		long[i] = 'a'
	}

	cases := map[string]struct {
		msg       SendMsg
		wantField map[string]*errors.Error
	}{
		"valid": {
			msg: SendMsg{Source: addr, Destination: addr, Amount: 1},
			wantField: map[string]*errors.Error{
				"Amount": nil, "Source": nil, "Destination": nil, "Memo": nil,
			},
		},
		"everything wrong": {
			msg: SendMsg{Source: spades.Address{1}, Amount: -2, Memo: string(long)},
			wantField: map[string]*errors.Error{
				"Amount":      errors.ErrAmount,
				"Source":      errors.ErrInput,
				"Destination": errors.ErrInput,
				"Memo":        errors.ErrInput,
			},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			for field, want := range tc.wantField {
				assert.FieldError(t, err, field, want)
			}
		})
	}
}
