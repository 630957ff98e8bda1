package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/iov-one/spades/app"
	"github.com/iov-one/spades/crypto"
	"github.com/iov-one/spades/crypto/schnorr"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/x/wallet"
)

func cmdCreateWallet(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for creating a new wallet. The signer of the transaction
pays the initial deposit.
`)
		fl.PrintDefaults()
	}
	var (
		ownersFl    = flAddresses(fl, "owners", "Comma separated owner addresses. Can be repeated.")
		thresholdFl = fl.Uint("threshold", 1, "Number of confirmations required to execute a transaction.")
		depositFl   = fl.Int64("deposit", 0, "Amount moved from the signer into the wallet.")
	)
	fl.Parse(args)

	msg := wallet.CreateWalletMsg{
		Owners:         *ownersFl,
		Threshold:      uint32(*thresholdFl),
		InitialDeposit: *depositFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeTx(output, app.NewStdTx(&msg))
}

func cmdSubmit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction proposing a transfer from a wallet. The transaction must
be signed by one of the wallet owners.
`)
		fl.PrintDefaults()
	}
	var (
		walletFl  = fl.Uint64("wallet", 0, "Wallet ID.")
		targetFl  = flAddress(fl, "target", "", "Transfer recipient address.")
		amountFl  = fl.Int64("amount", 0, "Amount to transfer.")
		payloadFl = flHex(fl, "payload", "", "Optional hex encoded data passed to the recipient.")
	)
	fl.Parse(args)

	msg := wallet.SubmitMsg{
		WalletID: sequenceID(*walletFl),
		Target:   *targetFl,
		Amount:   *amountFl,
		Payload:  *payloadFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeTx(output, app.NewStdTx(&msg))
}

func cmdConfirm(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction confirming a pending wallet transaction. The owner signing
this transaction is credited with a confirmation.
`)
		fl.PrintDefaults()
	}
	var (
		walletFl = fl.Uint64("wallet", 0, "Wallet ID.")
		nonceFl  = fl.Uint64("nonce", 0, "Transaction nonce.")
	)
	fl.Parse(args)

	msg := wallet.SignTransactionMsg{
		WalletID: sequenceID(*walletFl),
		Nonce:    *nonceFl,
		Mode:     wallet.SignModeDirect,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeTx(output, app.NewStdTx(&msg))
}

func cmdAggregate(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction confirming a pending wallet transaction on behalf of many
owners at once. All given secp256k1 keys produce a single Schnorr signature
over the transaction digest. The pending transaction and the chain id are
fetched from the spadesd API.

The result can be signed and relayed by anyone.
`)
		fl.PrintDefaults()
	}
	var (
		apiFl = fl.String("api", defaultAPI(),
			"spadesd HTTP API address. You can use SPADESCLI_API environment variable to set it.")
		chainFl = fl.String("chain", env("SPADESCLI_CHAIN_ID", ""),
			"Chain id. You can use SPADESCLI_CHAIN_ID environment variable to set it.")
		walletFl = fl.Uint64("wallet", 0, "Wallet ID.")
		nonceFl  = fl.Uint64("nonce", 0, "Transaction nonce.")
		keysFl   = fl.String("keys", "", "Comma separated paths to the private key files of the confirming owners.")
	)
	fl.Parse(args)

	if *keysFl == "" {
		return errors.Wrap(errors.ErrEmpty, "at least one key is required")
	}
	var privs []*btcec.PrivateKey
	for _, path := range strings.Split(*keysFl, ",") {
		key, err := loadPrivateKey(strings.TrimSpace(path))
		if err != nil {
			return err
		}
		if key.Type != crypto.KeyTypeSecp256k1 {
			return errors.Wrapf(errors.ErrType, "%s: aggregate confirmation requires a secp256k1 key", path)
		}
		priv, err := schnorr.PrivateKeyFromBytes(key.Data)
		if err != nil {
			return err
		}
		privs = append(privs, priv)
	}

	chainID := *chainFl
	if chainID == "" {
		var err error
		if chainID, err = apiChainID(*apiFl); err != nil {
			return fmt.Errorf("cannot fetch chain id: %s", err)
		}
	}
	walletID := sequenceID(*walletFl)
	t, err := fetchTransaction(*apiFl, walletID, *nonceFl)
	if err != nil {
		return err
	}

	proof, err := aggregateProof(chainID, t, privs)
	if err != nil {
		return err
	}
	msg := wallet.SignTransactionMsg{
		WalletID:  walletID,
		Nonce:     *nonceFl,
		Mode:      wallet.SignModeAggregate,
		Aggregate: proof,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeTx(output, app.NewStdTx(&msg))
}

// aggregateProof signs the confirmation digest of the transaction with all
// given keys.
func aggregateProof(chainID string, t *wallet.Transaction, privs []*btcec.PrivateKey) (*wallet.AggregateProof, error) {
	digest, err := wallet.TransactionDigest(chainID, t)
	if err != nil {
		return nil, err
	}
	sig, agg, err := schnorr.SignAggregate(digest, privs...)
	if err != nil {
		return nil, errors.Wrap(err, "cannot sign")
	}
	return &wallet.AggregateProof{
		Signature:  sig,
		PublicKeys: agg.Keys(),
	}, nil
}

func fetchTransaction(api string, walletID []byte, nonce uint64) (*wallet.Transaction, error) {
	values, err := apiQuery(api, "/wallets/transactions", wallet.TransactionKey(walletID, nonce))
	if err != nil {
		return nil, fmt.Errorf("cannot fetch transaction: %s", err)
	}
	if len(values) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "transaction %d of wallet %X", nonce, walletID)
	}
	var t wallet.Transaction
	if err := t.Unmarshal(values[0]); err != nil {
		return nil, err
	}
	return &t, nil
}

func cmdRevoke(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction withdrawing the direct confirmation of the signer.
`)
		fl.PrintDefaults()
	}
	var (
		walletFl = fl.Uint64("wallet", 0, "Wallet ID.")
		nonceFl  = fl.Uint64("nonce", 0, "Transaction nonce.")
	)
	fl.Parse(args)

	msg := wallet.RevokeConfirmationMsg{
		WalletID: sequenceID(*walletFl),
		Nonce:    *nonceFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeTx(output, app.NewStdTx(&msg))
}

func cmdExecute(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction releasing the funds of a confirmed wallet transaction.
`)
		fl.PrintDefaults()
	}
	var (
		walletFl = fl.Uint64("wallet", 0, "Wallet ID.")
		nonceFl  = fl.Uint64("nonce", 0, "Transaction nonce.")
	)
	fl.Parse(args)

	msg := wallet.ExecuteTransactionMsg{
		WalletID: sequenceID(*walletFl),
		Nonce:    *nonceFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeTx(output, app.NewStdTx(&msg))
}
