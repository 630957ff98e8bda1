package cash

import (
	"context"
	"testing"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/spadestest"
	"github.com/iov-one/spades/spadestest/assert"
	"github.com/iov-one/spades/store"
)

func TestMoveCoins(t *testing.T) {
	alice := spadestest.NewCondition().Address()
	bob := spadestest.NewCondition().Address()

	cases := map[string]struct {
		issue   int64
		move    int64
		src     spades.Address
		dest    spades.Address
		wantErr *errors.Error
		wantSrc int64
		wantDst int64
	}{
		"full balance": {
			issue: 100, move: 100, src: alice, dest: bob,
			wantSrc: 0, wantDst: 100,
		},
		"partial": {
			issue: 100, move: 30, src: alice, dest: bob,
			wantSrc: 70, wantDst: 30,
		},
		"zero amount": {
			issue: 100, move: 0, src: alice, dest: bob,
			wantSrc: 100, wantDst: 0,
		},
		"too poor": {
			issue: 10, move: 11, src: alice, dest: bob,
			wantErr: ErrInsufficientFunds,
			wantSrc: 10,
		},
		"negative amount": {
			issue: 10, move: -1, src: alice, dest: bob,
			wantErr: errors.ErrAmount,
			wantSrc: 10,
		},
		"send to self": {
			issue: 50, move: 20, src: alice, dest: alice,
			wantSrc: 50, wantDst: 50,
		},
		"invalid destination": {
			issue: 50, move: 20, src: alice, dest: spades.Address{1, 2},
			wantErr: errors.ErrInput,
			wantSrc: 50,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := NewController(nil)
			assert.Nil(t, ctrl.IssueCoins(db, alice, tc.issue))

			err := ctrl.MoveCoins(context.Background(), db, tc.src, tc.dest, tc.move, nil)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
			} else {
				assert.Nil(t, err)
			}

			got, err := ctrl.Balance(db, tc.src)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantSrc, got)
			if tc.dest.Validate() == nil {
				got, err = ctrl.Balance(db, tc.dest)
				assert.Nil(t, err)
				assert.Equal(t, tc.wantDst, got)
			}
		})
	}
}

func TestIssueCoinsOverflow(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(nil)
	addr := spadestest.NewCondition().Address()

	assert.Nil(t, ctrl.IssueCoins(db, addr, 1<<62))
	assert.Nil(t, ctrl.IssueCoins(db, addr, (1<<62)-1))
	err := ctrl.IssueCoins(db, addr, 1)
	assert.IsErr(t, errors.ErrOverflow, err)

	got, err := ctrl.Balance(db, addr)
	assert.Nil(t, err)
	assert.Equal(t, int64(1<<63-1), got)
}

func TestReceiverHook(t *testing.T) {
	alice := spadestest.NewCondition().Address()
	bob := spadestest.NewCondition().Address()

	var (
		gotFrom    spades.Address
		gotAmount  int64
		gotPayload []byte
		reject     bool
	)
	receivers := NewReceivers()
	receivers.Register(bob, ReceiverFunc(func(ctx spades.Context, db spades.KVStore, from spades.Address, amount int64, payload []byte) error {
		if reject {
			return errors.Wrap(errors.ErrState, "closed")
		}
		gotFrom, gotAmount, gotPayload = from, amount, payload
		return nil
	}))

	db := store.MemStore()
	ctrl := NewController(receivers)
	assert.Nil(t, ctrl.IssueCoins(db, alice, 100))

	assert.Nil(t, ctrl.MoveCoins(context.Background(), db, alice, bob, 40, []byte("hello")))
	assert.Equal(t, alice, gotFrom)
	assert.Equal(t, int64(40), gotAmount)
	assert.Equal(t, []byte("hello"), gotPayload)

	reject = true
	err := ctrl.MoveCoins(context.Background(), db, alice, bob, 10, nil)
	assert.IsErr(t, ErrRejected, err)

	receivers.Register(bob, nil)
	assert.Equal(t, nil, receivers.Get(bob))
	assert.Nil(t, ctrl.MoveCoins(context.Background(), db, alice, bob, 10, nil))
}
