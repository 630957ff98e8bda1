package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/app"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/x/cash"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cmdInit = &cobra.Command{
	Use:   "init <chain id>",
	Short: "Write a genesis file into the home directory",
	Long: `Write a genesis file into the home directory. Accounts can be funded with
repeated --issue <address>=<amount> flags. The ledger state is created from
this file the first time the ledger is opened.`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

var flagInit struct {
	Issue []string
	Force bool
}

func init() {
	cmdInit.Flags().StringSliceVar(&flagInit.Issue, "issue", nil, "fund an account: <address>=<amount>")
	cmdInit.Flags().BoolVar(&flagInit.Force, "force", false, "overwrite an existing genesis file")
}

type genesisAccount struct {
	Address spades.Address `json:"address"`
	Amount  int64          `json:"amount"`
}

func runInit(cmd *cobra.Command, args []string) error {
	chainID := args[0]
	if !spades.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "invalid chain id %q", chainID)
	}

	accounts, err := parseIssue(flagInit.Issue)
	if err != nil {
		return err
	}
	rawAccounts, err := json.Marshal(accounts)
	if err != nil {
		return errors.Wrap(err, "encode accounts")
	}
	gen := app.Genesis{
		ChainID: chainID,
		AppState: spades.Options{
			cash.GenesisKey: rawAccounts,
		},
	}
	raw, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode genesis")
	}

	path := genesisPath()
	if _, err := os.Stat(path); err == nil && !flagInit.Force {
		return errors.Wrapf(errors.ErrDuplicate, "%s exists, use --force to overwrite", path)
	}
	if err := os.MkdirAll(viper.GetString(keyHome), 0700); err != nil {
		return errors.Wrap(err, "create home")
	}
	if err := ioutil.WriteFile(path, raw, 0600); err != nil {
		return errors.Wrap(err, "write genesis")
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func parseIssue(values []string) ([]genesisAccount, error) {
	accounts := make([]genesisAccount, 0, len(values))
	for _, v := range values {
		chunks := strings.SplitN(v, "=", 2)
		if len(chunks) != 2 {
			return nil, errors.Wrapf(errors.ErrInput, "issue %q: want <address>=<amount>", v)
		}
		addr, err := spades.ParseAddress(chunks[0])
		if err != nil {
			return nil, errors.Wrapf(err, "issue %q", v)
		}
		if err := addr.Validate(); err != nil {
			return nil, errors.Wrapf(err, "issue %q", v)
		}
		amount, err := strconv.ParseInt(chunks[1], 10, 64)
		if err != nil || amount < 0 {
			return nil, errors.Wrapf(errors.ErrAmount, "issue %q", v)
		}
		accounts = append(accounts, genesisAccount{Address: addr, Amount: amount})
	}
	return accounts, nil
}
