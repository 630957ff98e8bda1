package main

import (
	"bytes"
	"encoding/hex"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/crypto"
	"github.com/iov-one/spades/crypto/schnorr"
	"github.com/iov-one/spades/spadestest/assert"
	"github.com/iov-one/spades/x/wallet"
)

func TestWalletCommands(t *testing.T) {
	const (
		ownerA = "b1ca7e78f74423ae01da3b51e676934d9105f282"
		ownerB = "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0"
	)

	cases := map[string]struct {
		run     func(input io.Reader, output io.Writer, args []string) error
		args    []string
		wantMsg spades.Msg
		wantErr bool
	}{
		"create wallet": {
			run:  cmdCreateWallet,
			args: []string{"-owners", ownerA + "," + ownerB, "-threshold", "2", "-deposit", "10"},
			wantMsg: &wallet.CreateWalletMsg{
				Owners:         []spades.Address{fromHex(t, ownerA), fromHex(t, ownerB)},
				Threshold:      2,
				InitialDeposit: 10,
			},
		},
		"create wallet with repeated owners flag": {
			run:  cmdCreateWallet,
			args: []string{"-owners", ownerA, "-owners", ownerB, "-threshold", "1"},
			wantMsg: &wallet.CreateWalletMsg{
				Owners:    []spades.Address{fromHex(t, ownerA), fromHex(t, ownerB)},
				Threshold: 1,
			},
		},
		"create wallet threshold too high": {
			run:     cmdCreateWallet,
			args:    []string{"-owners", ownerA, "-threshold", "2"},
			wantErr: true,
		},
		"submit": {
			run:  cmdSubmit,
			args: []string{"-wallet", "3", "-target", ownerB, "-amount", "60", "-payload", "cafe"},
			wantMsg: &wallet.SubmitMsg{
				WalletID: sequenceID(3),
				Target:   fromHex(t, ownerB),
				Amount:   60,
				Payload:  []byte{0xca, 0xfe},
			},
		},
		"submit without target": {
			run:     cmdSubmit,
			args:    []string{"-wallet", "3", "-amount", "60"},
			wantErr: true,
		},
		"confirm": {
			run:  cmdConfirm,
			args: []string{"-wallet", "1", "-nonce", "4"},
			wantMsg: &wallet.SignTransactionMsg{
				WalletID: sequenceID(1),
				Nonce:    4,
				Mode:     wallet.SignModeDirect,
			},
		},
		"revoke": {
			run:  cmdRevoke,
			args: []string{"-wallet", "1", "-nonce", "4"},
			wantMsg: &wallet.RevokeConfirmationMsg{
				WalletID: sequenceID(1),
				Nonce:    4,
			},
		},
		"execute": {
			run:  cmdExecute,
			args: []string{"-wallet", "2", "-nonce", "0"},
			wantMsg: &wallet.ExecuteTransactionMsg{
				WalletID: sequenceID(2),
				Nonce:    0,
			},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var output bytes.Buffer
			err := tc.run(nil, &output, tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatal("want an error")
				}
				return
			}
			assert.Nil(t, err)

			tx, err := readTx(&output)
			assert.Nil(t, err)
			msg, err := tx.GetMsg()
			assert.Nil(t, err)
			assert.Equal(t, tc.wantMsg, msg)
		})
	}
}

func TestAggregate(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	alice, bob := crypto.GenPrivKeySecp256k1(), crypto.GenPrivKeySecp256k1()
	paths := []string{writeKeyFile(t, dir, alice), writeKeyFile(t, dir, bob)}

	walletID := sequenceID(1)
	pending := wallet.Transaction{
		WalletID:  walletID,
		Nonce:     2,
		Submitter: alice.PublicKey().Address(),
		Target:    fromHex(t, "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0"),
		Amount:    60,
		Payload:   []byte("invoice 7"),
	}
	raw, err := pending.Marshal()
	assert.Nil(t, err)
	api := &fakeAPI{
		chainID: "aggregate-chain",
		results: map[string][]byte{
			"/query/wallets/transactions?" + hex.EncodeToString(wallet.TransactionKey(walletID, 2)): raw,
		},
	}
	srv := httptest.NewServer(api)
	defer srv.Close()

	var output bytes.Buffer
	args := []string{"-api", srv.URL, "-wallet", "1", "-nonce", "2", "-keys", strings.Join(paths, ",")}
	assert.Nil(t, cmdAggregate(nil, &output, args))

	tx, err := readTx(&output)
	assert.Nil(t, err)
	txmsg, err := tx.GetMsg()
	assert.Nil(t, err)
	msg := txmsg.(*wallet.SignTransactionMsg)
	assert.Equal(t, wallet.SignModeAggregate, msg.Mode)
	assert.Equal(t, walletID, msg.WalletID)
	assert.Equal(t, uint64(2), msg.Nonce)
	assert.Equal(t, 2, len(msg.Aggregate.PublicKeys))

	agg, err := schnorr.AggregatePublicKeys(msg.Aggregate.PublicKeys)
	assert.Nil(t, err)
	assert.Equal(t, schnorr.SignatureSize, len(msg.Aggregate.Signature))
	digest, err := wallet.TransactionDigest("aggregate-chain", &pending)
	assert.Nil(t, err)
	assert.Nil(t, schnorr.VerifyAggregate(agg, digest, msg.Aggregate.Signature))

	// a different chain produces a different digest
	other, err := wallet.TransactionDigest("other-chain", &pending)
	assert.Nil(t, err)
	if schnorr.VerifyAggregate(agg, other, msg.Aggregate.Signature) == nil {
		t.Fatal("signature must be bound to the chain")
	}
}

func TestAggregateRejectsEd25519(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	path := writeKeyFile(t, dir, crypto.GenPrivKeyEd25519())

	var output bytes.Buffer
	args := []string{"-chain", "aggregate-chain", "-wallet", "1", "-keys", path, "-api", "http://127.0.0.1:1"}
	if err := cmdAggregate(nil, &output, args); err == nil {
		t.Fatal("want an error")
	}
}

func TestAggregateMissingTransaction(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	path := writeKeyFile(t, dir, crypto.GenPrivKeySecp256k1())

	srv := httptest.NewServer(&fakeAPI{chainID: "aggregate-chain"})
	defer srv.Close()

	var output bytes.Buffer
	args := []string{"-api", srv.URL, "-wallet", "1", "-nonce", "9", "-keys", path}
	if err := cmdAggregate(nil, &output, args); err == nil {
		t.Fatal("want an error")
	}
}
