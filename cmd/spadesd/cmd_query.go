package main

import (
	"encoding/hex"
	"encoding/json"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	"github.com/spf13/cobra"
)

var cmdQuery = &cobra.Command{
	Use:   "query <path> [hex data]",
	Short: "Read the ledger state",
	Long: `Read the ledger state. Path is one of the registered query paths, for
example /balances, /auth, /wallets, /wallets/owner, /wallets/transactions
or /wallets/signed. Keys and values are printed hex encoded.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runQuery,
}

var flagQuery struct {
	Prefix bool
}

func init() {
	cmdQuery.Flags().BoolVar(&flagQuery.Prefix, "prefix", false, "return all entries with keys starting with data")
}

func runQuery(cmd *cobra.Command, args []string) error {
	path := args[0]
	var data []byte
	if len(args) == 2 {
		var err error
		if data, err = hex.DecodeString(args[1]); err != nil {
			return errors.Wrap(errors.ErrInput, "data must be hex encoded")
		}
	}
	if flagQuery.Prefix {
		path += "?" + spades.PrefixQueryMod
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	n, err := openNode(logger)
	if err != nil {
		return err
	}
	defer n.close()

	models, err := n.ledger.Query(path, data)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(newQueryResults(models))
}
