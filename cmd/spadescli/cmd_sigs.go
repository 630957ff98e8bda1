package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/spades"
)

func cmdSignTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Sign given transaction. This is decoding a transaction data from standard
input, adds a signature and writes back to standard output signed transaction
content.

The chain id and the signer sequence are fetched from the spadesd API unless
provided with flags.
`)
		fl.PrintDefaults()
	}
	var (
		apiFl = fl.String("api", defaultAPI(),
			"spadesd HTTP API address. You can use SPADESCLI_API environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that transaction should be signed with. You can use SPADESCLI_PRIV_KEY environment variable to set it.")
		chainFl = fl.String("chain", env("SPADESCLI_CHAIN_ID", ""),
			"Chain id. You can use SPADESCLI_CHAIN_ID environment variable to set it.")
		seqFl = fl.Int64("seq", -1, "Signer sequence. Negative value means the current sequence is fetched.")
	)
	fl.Parse(args)

	key, err := loadPrivateKey(*keyPathFl)
	if err != nil {
		return err
	}
	tx, err := readTx(input)
	if err != nil {
		return err
	}

	chainID := *chainFl
	if chainID == "" {
		if chainID, err = apiChainID(*apiFl); err != nil {
			return fmt.Errorf("cannot fetch chain id: %s", err)
		}
	}
	seq := *seqFl
	if seq < 0 {
		if seq, err = fetchSequence(*apiFl, key.PublicKey().Address()); err != nil {
			return fmt.Errorf("cannot fetch sequence: %s", err)
		}
	}

	if err := tx.Sign(key, chainID, seq); err != nil {
		return fmt.Errorf("cannot sign transaction: %s", err)
	}
	return writeTx(output, tx)
}

// fetchSequence returns the sequence the next signature of given account
// must use.
func fetchSequence(api string, addr spades.Address) (int64, error) {
	var res struct {
		Sequence int64 `json:"sequence"`
	}
	if err := apiGet(api+"/sequence/"+addr.String(), &res); err != nil {
		return 0, err
	}
	return res.Sequence, nil
}
