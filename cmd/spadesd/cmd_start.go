package main

import (
	"github.com/iov-one/spades/app"
	"github.com/iov-one/spades/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/abci/server"
	cmn "github.com/tendermint/tendermint/libs/common"
)

var cmdStart = &cobra.Command{
	Use:   "start",
	Short: "Run the ledger as an ABCI application",
	Long: `Serve the ledger to a tendermint node over the ABCI socket protocol.

The genesis is taken from the app_state of the tendermint genesis file when
the node calls InitChain, so the store must not have been initialized with
the init command.`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

var flagStart struct {
	Bind string
}

func init() {
	cmdStart.Flags().StringVar(&flagStart.Bind, "bind", "tcp://localhost:46658", "address the ABCI server listens on")
}

func runStart(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	n, err := openLedger(logger)
	if err != nil {
		return err
	}

	abciApp := app.NewApplication("spades", n.ledger).
		WithLogger(logger.With("module", "abci")).
		WithDebug(viper.GetString(keyLogLevel) == "debug")
	svr, err := server.NewServer(flagStart.Bind, "socket", abciApp)
	if err != nil {
		n.close()
		return errors.Wrap(err, "create ABCI server")
	}
	svr.SetLogger(logger.With("module", "abci-server"))

	logger.Info("starting ABCI application", "bind", flagStart.Bind)
	if err := svr.Start(); err != nil {
		n.close()
		return errors.Wrap(err, "start ABCI server")
	}

	cmn.TrapSignal(logger, func() {
		if err := svr.Stop(); err != nil {
			logger.Error("stop ABCI server", "err", err)
		}
		n.close()
	})
	<-svr.Quit()
	return nil
}
