package main

import (
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"os"

	"github.com/iov-one/spades/errors"
	"github.com/spf13/cobra"
)

var cmdApply = &cobra.Command{
	Use:   "apply [transaction file...]",
	Short: "Deliver transactions and commit their changes",
	Long: `Deliver transactions and commit their changes. Every file must contain a
single serialized transaction. Without arguments one transaction is read
from stdin, so spadescli output can be piped in directly.`,
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	n, err := openNode(logger)
	if err != nil {
		return err
	}
	defer n.close()

	var inputs [][]byte
	if len(args) == 0 {
		raw, err := ioutil.ReadAll(io.LimitReader(os.Stdin, maxTxSize+1))
		if err != nil {
			return errors.Wrap(err, "read stdin")
		}
		inputs = append(inputs, raw)
	}
	for _, path := range args {
		raw, err := ioutil.ReadFile(path)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "read %s: %s", path, err)
		}
		inputs = append(inputs, raw)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	var failed int
	for _, raw := range inputs {
		if len(raw) > maxTxSize {
			return errors.Wrap(errors.ErrInput, "transaction too big")
		}
		res, err := applyTx(context.Background(), n.ledger, raw)
		if err != nil {
			return err
		}
		if res.Code != errors.SuccessABCICode {
			failed++
		}
		if err := enc.Encode(res); err != nil {
			return errors.Wrap(err, "write result")
		}
	}
	if failed != 0 {
		return errors.Wrapf(errors.ErrState, "%d of %d transactions failed", failed, len(inputs))
	}
	return nil
}
