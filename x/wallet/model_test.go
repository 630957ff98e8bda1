package wallet

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/spadestest"
	"github.com/iov-one/spades/spadestest/assert"
	"github.com/iov-one/spades/store"
	"github.com/iov-one/spades/x/cash"
)

func TestValidateConfiguration(t *testing.T) {
	a := spadestest.NewCondition().Address()
	b := spadestest.NewCondition().Address()
	many := make([]spades.Address, MaxOwners+1)
	for i := range many {
		many[i] = spadestest.NewCondition().Address()
	}

	cases := map[string]struct {
		owners    []spades.Address
		threshold uint32
		wantErr   *errors.Error
	}{
		"single owner":       {owners: []spades.Address{a}, threshold: 1},
		"all must sign":      {owners: []spades.Address{a, b}, threshold: 2},
		"maximum owners":     {owners: many[:MaxOwners], threshold: MaxOwners},
		"too many owners":    {owners: many, threshold: 1, wantErr: ErrInvalidConfiguration},
		"no owners":          {threshold: 1, wantErr: ErrInvalidConfiguration},
		"zero threshold":     {owners: []spades.Address{a}, wantErr: ErrInvalidConfiguration},
		"threshold too high": {owners: []spades.Address{a}, threshold: 2, wantErr: ErrInvalidConfiguration},
		"duplicate":          {owners: []spades.Address{a, b, a}, threshold: 1, wantErr: ErrInvalidConfiguration},
		"malformed owner":    {owners: []spades.Address{a, {1, 2, 3}}, threshold: 1, wantErr: ErrInvalidConfiguration},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := ValidateConfiguration(tc.owners, tc.threshold)
			if tc.wantErr == nil {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, tc.wantErr, err)
			}
		})
	}
}

func TestTransactionConfirmations(t *testing.T) {
	a := spadestest.NewCondition().Address()
	b := spadestest.NewCondition().Address()
	c := spadestest.NewCondition().Address()

	tx := Transaction{
		WalletID:  spadestest.SequenceID(1),
		Submitter: a,
		Target:    c,
		Confirmations: []Confirmation{
			{Kind: Direct, Owner: a},
			{Kind: Aggregate, Owner: b, Group: []byte{2, 3}},
		},
	}
	assert.Nil(t, tx.Validate())
	assert.Equal(t, 2, tx.Count())
	assert.Equal(t, []spades.Address{a}, tx.ConfirmedBy())

	assert.Equal(t, false, tx.removeDirect(b))
	assert.Equal(t, true, tx.removeDirect(a))
	assert.Equal(t, 1, tx.Count())

	tx.Confirmations = append(tx.Confirmations, Confirmation{Kind: Direct, Owner: b})
	assert.IsErr(t, errors.ErrDuplicate, tx.Validate())

	raw, err := tx.Marshal()
	assert.Nil(t, err)
	var loaded Transaction
	assert.Nil(t, loaded.Unmarshal(raw))
	assert.Equal(t, tx.Confirmations, loaded.Confirmations)
}

func TestConfirmationDigest(t *testing.T) {
	wallet := WalletAddress(spadestest.SequenceID(1))
	target := spadestest.NewCondition().Address()

	base, err := ConfirmationDigest("test-chain", wallet, 3, target, 10, []byte("x"))
	assert.Nil(t, err)
	assert.Equal(t, 32, len(base))

	again, err := ConfirmationDigest("test-chain", wallet, 3, target, 10, []byte("x"))
	assert.Nil(t, err)
	assert.Equal(t, base, again)

	variants := map[string]func() ([]byte, error){
		"chain":   func() ([]byte, error) { return ConfirmationDigest("other-chain", wallet, 3, target, 10, []byte("x")) },
		"wallet":  func() ([]byte, error) { return ConfirmationDigest("test-chain", WalletAddress(spadestest.SequenceID(2)), 3, target, 10, []byte("x")) },
		"nonce":   func() ([]byte, error) { return ConfirmationDigest("test-chain", wallet, 4, target, 10, []byte("x")) },
		"target":  func() ([]byte, error) { return ConfirmationDigest("test-chain", wallet, 3, wallet, 10, []byte("x")) },
		"amount":  func() ([]byte, error) { return ConfirmationDigest("test-chain", wallet, 3, target, 11, []byte("x")) },
		"payload": func() ([]byte, error) { return ConfirmationDigest("test-chain", wallet, 3, target, 10, nil) },
	}
	for name, fn := range variants {
		t.Run(name, func(t *testing.T) {
			got, err := fn()
			assert.Nil(t, err)
			if string(got) == string(base) {
				t.Fatal("digest does not depend on the field")
			}
		})
	}
}

func TestGenesis(t *testing.T) {
	a := spadestest.NewCondition().Address()
	b := spadestest.NewCondition().Address()
	genesis := `{"wallet": [
		{"owners": ["` + a.String() + `", "` + b.String() + `"], "threshold": 2, "balance": 500},
		{"owners": ["` + b.String() + `"], "threshold": 1}
	]}`
	var opts spades.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	w, err := GetWallet(db, spadestest.SequenceID(1))
	assert.Nil(t, err)
	assert.Equal(t, uint32(2), w.Threshold)
	assert.Equal(t, []spades.Address{a, b}, w.Owners)

	balance, err := cash.NewController(nil).Balance(db, WalletAddress(spadestest.SequenceID(1)))
	assert.Nil(t, err)
	assert.Equal(t, int64(500), balance)

	_, err = GetWallet(db, spadestest.SequenceID(2))
	assert.Nil(t, err)

	bad := spades.Options{"wallet": json.RawMessage(`[{"owners": ["` + a.String() + `"], "threshold": 2}]`)}
	assert.IsErr(t, ErrInvalidConfiguration, Initializer{}.FromGenesis(bad, store.MemStore()))
}

func TestMsgValidation(t *testing.T) {
	id := spadestest.SequenceID(1)
	addr := spadestest.NewCondition().Address()

	cases := map[string]struct {
		msg       spades.Msg
		wantField map[string]*errors.Error
	}{
		"valid submit": {
			msg:       &SubmitMsg{WalletID: id, Target: addr, Amount: 0},
			wantField: map[string]*errors.Error{"WalletID": nil, "Target": nil, "Amount": nil},
		},
		"broken submit": {
			msg: &SubmitMsg{WalletID: []byte{1}, Amount: -1, Payload: make([]byte, maxPayloadSize+1)},
			wantField: map[string]*errors.Error{
				"WalletID": errors.ErrInput,
				"Target":   errors.ErrInput,
				"Amount":   errors.ErrAmount,
				"Payload":  errors.ErrInput,
			},
		},
		"direct with proof": {
			msg:       &SignTransactionMsg{WalletID: id, Mode: SignModeDirect, Aggregate: &AggregateProof{}},
			wantField: map[string]*errors.Error{"Aggregate": errors.ErrMsg},
		},
		"missing wallet on revoke": {
			msg:       &RevokeConfirmationMsg{},
			wantField: map[string]*errors.Error{"WalletID": errors.ErrEmpty},
		},
		"missing wallet on execute": {
			msg:       &ExecuteTransactionMsg{WalletID: []byte("short")},
			wantField: map[string]*errors.Error{"WalletID": errors.ErrInput},
		},
		"negative deposit": {
			msg:       &CreateWalletMsg{Owners: []spades.Address{addr}, Threshold: 1, InitialDeposit: -5},
			wantField: map[string]*errors.Error{"InitialDeposit": errors.ErrAmount},
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
